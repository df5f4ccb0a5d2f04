package gmail

import (
	"net/http"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// apiHTTPClient carries all Gmail API traffic. The idle pool is sized to
// the message-fetch concurrency cap so a summary burst keeps its
// connections instead of redialing.
var apiHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        maxConcurrentFetches,
		MaxIdleConnsPerHost: maxConcurrentFetches,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// EssentialEmail is the reduced form of one Gmail message: the seven fields
// a summary consumer actually needs. Pointer fields marshal to JSON null
// when the source field was absent. MessageText is always present, possibly
// empty, never null.
type EssentialEmail struct {
	MessageID        *string  `json:"messageId"`
	ThreadID         *string  `json:"threadId"`
	MessageTimestamp *int64   `json:"messageTimestamp"`
	LabelIDs         []string `json:"labelIds"`
	Sender           *string  `json:"sender"`
	Subject          *string  `json:"subject"`
	MessageText      string   `json:"messageText"`
}

// Summary is one account snapshot. Labels and Profile pass through from the
// API unchanged; Emails carries the reduced messages in message-list order,
// newest first. Labels and Emails are never nil.
type Summary struct {
	Labels  []*gmail.Label    `json:"labels"`
	Profile *gmail.Profile    `json:"profile"`
	Emails  []*EssentialEmail `json:"emails"`
}
