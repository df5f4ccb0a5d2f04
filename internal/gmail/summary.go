package gmail

import (
	gmail "google.golang.org/api/gmail/v1"
)

// ToEssentialFields reduces a full message resource to its essential fields.
// Missing optional fields become nil, never errors: a message without an
// internalDate has a nil timestamp, a message without a From header has a
// nil sender. LabelIDs defaults to an empty slice and MessageText is always
// a string, possibly empty.
func ToEssentialFields(msg *gmail.Message) *EssentialEmail {
	if msg == nil {
		return &EssentialEmail{LabelIDs: []string{}}
	}

	email := &EssentialEmail{
		MessageID:   optionalString(msg.Id),
		ThreadID:    optionalString(msg.ThreadId),
		LabelIDs:    msg.LabelIds,
		MessageText: ExtractMessageText(msg.Payload),
	}
	if email.LabelIDs == nil {
		email.LabelIDs = []string{}
	}

	// internalDate is epoch milliseconds; zero means absent.
	if msg.InternalDate != 0 {
		seconds := msg.InternalDate / 1000
		email.MessageTimestamp = &seconds
	}

	headers := headerMap(msg.Payload)
	if sender, ok := headers["From"]; ok {
		email.Sender = &sender
	}
	if subject, ok := headers["Subject"]; ok {
		email.Subject = &subject
	}

	return email
}

// headerMap flattens a payload's header list into a name-to-value map.
// Names match case-sensitively as given; duplicate names keep the last
// occurrence.
func headerMap(payload *gmail.MessagePart) map[string]string {
	if payload == nil {
		return nil
	}
	headers := make(map[string]string, len(payload.Headers))
	for _, h := range payload.Headers {
		if h == nil {
			continue
		}
		headers[h.Name] = h.Value
	}
	return headers
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
