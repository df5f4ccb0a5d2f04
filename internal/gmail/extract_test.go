package gmail

import (
	"encoding/base64"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func encodeBody(text string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(text))
}

func plainPart(text string) *gmail.MessagePart {
	return &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: encodeBody(text)},
	}
}

func htmlPart(content string) *gmail.MessagePart {
	return &gmail.MessagePart{
		MimeType: "text/html",
		Body:     &gmail.MessagePartBody{Data: encodeBody(content)},
	}
}

// TestExtractMessageText tests body assembly across MIME tree shapes.
// Collected fragments are reversed before joining, so sibling parts appear
// in reverse traversal order in the result.
func TestExtractMessageText(t *testing.T) {
	tests := []struct {
		name string
		root *gmail.MessagePart
		want string
	}{
		{
			name: "nil root",
			root: nil,
			want: "",
		},
		{
			name: "single plain part",
			root: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: "VGVzdCBib2R5"},
			},
			want: "Test body",
		},
		{
			name: "plain part without body data",
			root: &gmail.MessagePart{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{},
			},
			want: "",
		},
		{
			name: "plain part with nil body",
			root: &gmail.MessagePart{MimeType: "text/plain"},
			want: "",
		},
		{
			name: "html part",
			root: htmlPart("<html><body><p>Hello</p></body></html>"),
			want: "Hello",
		},
		{
			name: "attachment skipped",
			root: &gmail.MessagePart{
				MimeType: "application/pdf",
				Body:     &gmail.MessagePartBody{Data: encodeBody("binary junk")},
			},
			want: "",
		},
		{
			name: "non-multipart container not descended",
			root: &gmail.MessagePart{
				MimeType: "message/rfc822",
				Parts:    []*gmail.MessagePart{plainPart("hidden")},
			},
			want: "",
		},
		{
			name: "multipart mixed with two plain children",
			root: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					plainPart("First part"),
					plainPart("Second part"),
				},
			},
			want: "Second part\nFirst part",
		},
		{
			name: "multipart alternative plain and html",
			root: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					plainPart("Plain body"),
					htmlPart("<p>HTML body</p>"),
				},
			},
			want: "HTML body\nPlain body",
		},
		{
			name: "nested multipart",
			root: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts:    []*gmail.MessagePart{plainPart("inner")},
					},
					plainPart("outer"),
				},
			},
			want: "outer\ninner",
		},
		{
			name: "attachment between text parts",
			root: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					plainPart("body"),
					{
						MimeType: "image/png",
						Body:     &gmail.MessagePartBody{AttachmentId: "att-1", Size: 1024},
					},
				},
			},
			want: "body",
		},
		{
			name: "no textual leaves",
			root: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{MimeType: "image/png", Body: &gmail.MessagePartBody{AttachmentId: "att-1"}},
					{MimeType: "application/octet-stream"},
				},
			},
			want: "",
		},
		{
			name: "undecodable leaf contributes nothing",
			root: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: "!!!not base64!!!"},
					},
					plainPart("survivor"),
				},
			},
			want: "survivor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMessageText(tt.root); got != tt.want {
				t.Errorf("ExtractMessageText() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExtractMessageTextDeepNesting tests that hostile part depth does not
// exhaust the call stack
func TestExtractMessageTextDeepNesting(t *testing.T) {
	leaf := plainPart("deep")
	root := leaf
	for i := 0; i < 50000; i++ {
		root = &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts:    []*gmail.MessagePart{root},
		}
	}

	if got := ExtractMessageText(root); got != "deep" {
		t.Errorf("ExtractMessageText(deep tree) = %q, want %q", got, "deep")
	}
}
