package gmail

import (
	"slices"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// ExtractMessageText walks a message's MIME part tree and assembles its
// readable body text.
//
// The walk is iterative with an explicit stack so pathological part depth
// cannot exhaust the call stack. text/plain leaves contribute their decoded
// text, text/html leaves contribute their extracted visible text, and
// multipart containers have their children pushed in reverse so that popping
// visits them in original left-to-right order. Any other part type, such as
// an attachment, is skipped along with everything below it.
//
// Collected fragments are reversed before joining with newlines. This
// restores a top-to-bottom reading order heuristically; it is not a proven
// document-order reconstruction for deeply nested multi-branch trees.
//
// A nil root or a tree without textual content yields the empty string.
func ExtractMessageText(root *gmail.MessagePart) string {
	if root == nil {
		return ""
	}

	var texts []string
	stack := []*gmail.MessagePart{root}
	for len(stack) > 0 {
		part := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if part == nil {
			continue
		}

		switch {
		case part.MimeType == "text/plain":
			if part.Body != nil && part.Body.Data != "" {
				if text := DecodePartData(part.Body.Data); text != "" {
					texts = append(texts, text)
				}
			}
		case part.MimeType == "text/html":
			if part.Body != nil && part.Body.Data != "" {
				if text := HTMLToText(DecodePartData(part.Body.Data)); text != "" {
					texts = append(texts, text)
				}
			}
		case strings.HasPrefix(part.MimeType, "multipart/"):
			for i := len(part.Parts) - 1; i >= 0; i-- {
				stack = append(stack, part.Parts[i])
			}
		}
	}

	slices.Reverse(texts)
	return strings.TrimSpace(strings.Join(texts, "\n"))
}
