package gmail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	// DefaultMaxMessages is how many recent messages a summary covers.
	DefaultMaxMessages = 10

	// DefaultFetchTimeout bounds one whole summary batch, matching the
	// timeout of the underlying HTTP client.
	DefaultFetchTimeout = 30 * time.Second

	// maxConcurrentFetches caps parallel message detail requests.
	maxConcurrentFetches = 10
)

// Client provides summary access to a single Gmail account
type Client struct {
	svc         *gmail.Service
	maxMessages int64
	timeout     time.Duration
}

// NewClientForToken creates a Gmail client authenticated with the given
// bearer access token. The token lifecycle belongs to the caller; no refresh
// is attempted.
func NewClientForToken(ctx context.Context, accessToken string) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, apiHTTPClient)
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = apiHTTPClient.Timeout

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return NewClientWithService(svc), nil
}

// NewClientWithService creates a client on top of an existing Gmail service.
// Useful for tests and for callers that construct the service themselves.
func NewClientWithService(svc *gmail.Service) *Client {
	return &Client{
		svc:         svc,
		maxMessages: DefaultMaxMessages,
		timeout:     DefaultFetchTimeout,
	}
}

// SetMaxMessages adjusts how many recent messages a summary covers.
// Values outside 1..DefaultMaxMessages are clamped.
func (c *Client) SetMaxMessages(n int64) {
	if n < 1 {
		n = 1
	}
	if n > DefaultMaxMessages {
		n = DefaultMaxMessages
	}
	c.maxMessages = n
}

// SetTimeout adjusts the overall summary batch timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// WithMaxMessages returns a shallow copy of the client with a different
// message cap. The copy shares the underlying service, so it can be used
// for a single call without mutating a cached client.
func (c *Client) WithMaxMessages(n int64) *Client {
	clone := *c
	clone.SetMaxMessages(n)
	return &clone
}

// ListLabels returns the account's labels. The result is never nil.
func (c *Client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	resp, err := c.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	if resp.Labels == nil {
		return []*gmail.Label{}, nil
	}
	return resp.Labels, nil
}

// GetProfile returns the account's Gmail profile.
func (c *Client) GetProfile(ctx context.Context) (*gmail.Profile, error) {
	profile, err := c.svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ListMessageIDs returns the ids of the most recent messages, newest first,
// at most max of them. The listing is unfiltered.
func (c *Client) ListMessageIDs(ctx context.Context, max int64) ([]string, error) {
	resp, err := c.svc.Users.Messages.List("me").MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m != nil && m.Id != "" {
			ids = append(ids, m.Id)
		}
	}
	return ids, nil
}

// GetMessage fetches one message with its full payload tree.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Users.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// GetEssentialMessage fetches one message and reduces it to its essential
// fields.
func (c *Client) GetEssentialMessage(ctx context.Context, messageID string) (*EssentialEmail, error) {
	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return ToEssentialFields(msg), nil
}

// FetchSummary gathers labels, profile and the most recent messages in one
// bounded batch. The three top-level calls run concurrently, then message
// details are fetched concurrently, then everything is reduced. Any single
// failure fails the whole fetch; there are no partial results and no
// retries. One timeout covers the entire batch.
func (c *Client) FetchSummary(ctx context.Context) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		labels  []*gmail.Label
		profile *gmail.Profile
		ids     []string
	)
	errs := make([]error, 3)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		labels, errs[0] = c.ListLabels(ctx)
	}()
	go func() {
		defer wg.Done()
		profile, errs[1] = c.GetProfile(ctx)
	}()
	go func() {
		defer wg.Done()
		ids, errs[2] = c.ListMessageIDs(ctx, c.maxMessages)
	}()
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	messages, err := c.fetchMessages(ctx, ids)
	if err != nil {
		return nil, err
	}

	emails := make([]*EssentialEmail, len(messages))
	for i, msg := range messages {
		emails[i] = ToEssentialFields(msg)
	}

	if labels == nil {
		labels = []*gmail.Label{}
	}
	return &Summary{
		Labels:  labels,
		Profile: profile,
		Emails:  emails,
	}, nil
}

// fetchMessages retrieves full message resources for the given ids,
// preserving input order. Concurrency is bounded by maxConcurrentFetches.
// All fetches run to completion before the first failure, by input order,
// is reported; a failure discards the whole batch.
func (c *Client) fetchMessages(ctx context.Context, ids []string) ([]*gmail.Message, error) {
	if len(ids) == 0 {
		return []*gmail.Message{}, nil
	}

	type result struct {
		index int
		msg   *gmail.Message
		err   error
	}

	results := make(chan result, len(ids))
	semaphore := make(chan struct{}, maxConcurrentFetches)

	for i, id := range ids {
		go func(index int, messageID string) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			msg, err := c.GetMessage(ctx, messageID)
			results <- result{index: index, msg: msg, err: err}
		}(i, id)
	}

	messages := make([]*gmail.Message, len(ids))
	errs := make([]error, len(ids))
	for range ids {
		r := <-results
		messages[r.index] = r.msg
		errs[r.index] = r.err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return messages, nil
}
