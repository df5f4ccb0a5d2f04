package gmail

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

// TestToEssentialFields tests reduction of message resources to the
// essential field set
func TestToEssentialFields(t *testing.T) {
	tests := []struct {
		name string
		msg  *gmail.Message
		want *EssentialEmail
	}{
		{
			name: "complete message",
			msg: &gmail.Message{
				Id:           "msg-1",
				ThreadId:     "thread-1",
				LabelIds:     []string{"INBOX", "UNREAD"},
				InternalDate: 1680000000000,
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Headers: []*gmail.MessagePartHeader{
						{Name: "From", Value: "alice@example.com"},
						{Name: "Subject", Value: "Quarterly report"},
					},
					Body: &gmail.MessagePartBody{Data: "VGVzdCBib2R5"},
				},
			},
			want: &EssentialEmail{
				MessageID:        strPtr("msg-1"),
				ThreadID:         strPtr("thread-1"),
				MessageTimestamp: int64Ptr(1680000000),
				LabelIDs:         []string{"INBOX", "UNREAD"},
				Sender:           strPtr("alice@example.com"),
				Subject:          strPtr("Quarterly report"),
				MessageText:      "Test body",
			},
		},
		{
			name: "missing optional fields",
			msg: &gmail.Message{
				Id: "msg-2",
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "No Sender"},
					},
					Body: &gmail.MessagePartBody{Data: "V2l0aG91dCBib2R5"},
				},
			},
			want: &EssentialEmail{
				MessageID:   strPtr("msg-2"),
				LabelIDs:    []string{},
				Subject:     strPtr("No Sender"),
				MessageText: "Without body",
			},
		},
		{
			name: "duplicate headers keep the last",
			msg: &gmail.Message{
				Id: "msg-3",
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "first"},
						{Name: "Subject", Value: "second"},
					},
				},
			},
			want: &EssentialEmail{
				MessageID: strPtr("msg-3"),
				LabelIDs:  []string{},
				Subject:   strPtr("second"),
			},
		},
		{
			name: "header names match case sensitively",
			msg: &gmail.Message{
				Id: "msg-4",
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{
						{Name: "from", Value: "bob@example.com"},
						{Name: "SUBJECT", Value: "shouting"},
					},
				},
			},
			want: &EssentialEmail{
				MessageID: strPtr("msg-4"),
				LabelIDs:  []string{},
			},
		},
		{
			name: "empty header value is present not null",
			msg: &gmail.Message{
				Id: "msg-5",
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{
						{Name: "From", Value: ""},
					},
				},
			},
			want: &EssentialEmail{
				MessageID: strPtr("msg-5"),
				LabelIDs:  []string{},
				Sender:    strPtr(""),
			},
		},
		{
			name: "no payload",
			msg:  &gmail.Message{Id: "msg-6", ThreadId: "thread-6"},
			want: &EssentialEmail{
				MessageID: strPtr("msg-6"),
				ThreadID:  strPtr("thread-6"),
				LabelIDs:  []string{},
			},
		},
		{
			name: "nil message",
			msg:  nil,
			want: &EssentialEmail{LabelIDs: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToEssentialFields(tt.msg))
		})
	}
}

// TestToEssentialFieldsTimestamp tests the internalDate to seconds mapping
func TestToEssentialFieldsTimestamp(t *testing.T) {
	tests := []struct {
		name         string
		internalDate int64
		want         *int64
	}{
		{
			name:         "milliseconds floor to seconds",
			internalDate: 1680000000999,
			want:         int64Ptr(1680000000),
		},
		{
			name:         "absent yields null",
			internalDate: 0,
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToEssentialFields(&gmail.Message{Id: "m", InternalDate: tt.internalDate})
			assert.Equal(t, tt.want, got.MessageTimestamp)
		})
	}
}

// TestEssentialEmailJSON pins the wire shape: absent fields marshal to
// null, labelIds to an empty array and messageText to an empty string
func TestEssentialEmailJSON(t *testing.T) {
	email := ToEssentialFields(&gmail.Message{Id: "msg-1"})

	data, err := json.Marshal(email)
	require.NoError(t, err)

	for _, fragment := range []string{
		`"messageId":"msg-1"`,
		`"threadId":null`,
		`"messageTimestamp":null`,
		`"labelIds":[]`,
		`"sender":null`,
		`"subject":null`,
		`"messageText":""`,
	} {
		assert.Contains(t, string(data), fragment)
	}
}
