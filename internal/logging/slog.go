package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
)

// Attribute keys every package logs with. Free-form keys are avoided so
// log streams aggregate cleanly.
const (
	KeyService  = "service"
	KeyAccount  = "account"
	KeyUserHash = "user_hash"
	KeyToken    = "token"
	KeyError    = "error"
)

// NewLogger returns a JSON structured logger writing to w. Debug mode lowers
// the level from Info to Debug.
//
// Server paths pass os.Stderr: on the stdio MCP transport stdout carries the
// protocol, and the fetch command reserves stdout for the result document.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Service tags a record with the Google service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Account tags a record with the account name.
func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

// Err tags a record with the error text. A nil error yields an empty group,
// which slog omits, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail reduces an email address to a short hash, keeping log
// entries correlatable without exposing the address itself.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(sum[:10])
}

// UserHash tags a record with the anonymized form of an email address.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// SanitizeToken masks an access token for logging, keeping only its
// length. Token prefixes stay out of logs entirely.
func SanitizeToken(token string) string {
	if token == "" {
		return "<unset>"
	}
	return fmt.Sprintf("[token len=%d]", len(token))
}

// Token tags a record with the masked form of an access token.
func Token(token string) slog.Attr {
	return slog.String(KeyToken, SanitizeToken(token))
}
