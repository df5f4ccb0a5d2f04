package gmail

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"strings"
	"unicode/utf8"
)

// DecodePartData decodes the body data of a single MIME part into text.
// Gmail delivers part bodies as unpadded base64url of either raw UTF-8 or
// quoted-printable text, so decoding runs through a three-tier fallback:
//
//  1. base64url-decode the padded input; failure yields "".
//  2. If the decoded bytes are valid UTF-8, return them as-is.
//  3. Otherwise decode them as quoted-printable and return the result with
//     invalid sequences replaced.
//  4. If the quoted-printable decode fails too, return the original bytes
//     with invalid sequences replaced.
//
// The function never fails; malformed input degrades to best-effort text or
// the empty string. Empty input returns "" without attempting a decode.
func DecodePartData(raw string) string {
	if raw == "" {
		return ""
	}

	decoded, err := decodeBase64URL(raw)
	if err != nil {
		return ""
	}
	if utf8.Valid(decoded) {
		return string(decoded)
	}

	unquoted, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(decoded)))
	if err != nil {
		return strings.ToValidUTF8(string(decoded), "�")
	}
	return strings.ToValidUTF8(string(unquoted), "�")
}

// decodeBase64URL decodes base64 data in the URL-safe alphabet, padding it
// to a multiple of 4 first. The standard alphabet is accepted as a fallback
// since the upstream tolerates both.
func decodeBase64URL(data string) ([]byte, error) {
	switch len(data) % 4 {
	case 2:
		data += "=="
	case 3:
		data += "="
	}

	decoded, err := base64.URLEncoding.DecodeString(data)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(data)
}
