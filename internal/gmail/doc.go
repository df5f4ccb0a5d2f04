// Package gmail fetches a compact summary of a Gmail account and reduces
// raw message resources to their essential fields.
//
// This package offers:
//   - Summary fetching (labels, profile and the ten most recent messages
//     gathered concurrently in one bounded batch)
//   - Reduction of a full message resource to seven essential fields
//   - Body text extraction from arbitrarily nested MIME part trees
//   - Best-effort decoding of base64url and quoted-printable part data
//   - Visible-text extraction from HTML bodies
//
// The decode and extraction layers never fail: malformed part data, broken
// encodings and unparseable HTML all degrade to empty strings so that one
// bad part cannot sink a whole message. Network and API failures, by
// contrast, propagate to the caller unchanged.
//
// Authentication:
// The client is built from a bearer access token supplied by the caller.
// Token acquisition and refresh are out of scope; see the google package
// for ways to resolve a token from the environment or a cache file.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClientForToken(ctx, accessToken)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := client.FetchSummary(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, email := range summary.Emails {
//	    fmt.Println(email.MessageText)
//	}
package gmail
