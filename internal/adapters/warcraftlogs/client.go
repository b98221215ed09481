// Package warcraftlogs is a client for the Warcraft Logs v2 GraphQL API.
//
// Requests are authorized with an OAuth2 client-credentials token that is
// cached and renewed before it expires. A 401 from the API drops the cached
// token and the query is retried.
package warcraftlogs

import (
	"bytes"
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/okian/guildscore/pkg/logger"
	"github.com/okian/guildscore/pkg/metrics"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Default endpoints and limits.
const (
	DefaultAPIURL   = "https://www.warcraftlogs.com/api/v2/client"
	DefaultTokenURL = "https://www.warcraftlogs.com/oauth/token"

	defaultMaxRetries = 3
	defaultRetryDelay = 3 * time.Second
	defaultTimeout    = 30 * time.Second
	defaultRPS        = 2
)

// Client talks to the Warcraft Logs API. It is safe for concurrent use.
type Client struct {
	apiURL     string
	http       *http.Client
	tokens     *tokenSource
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	log        logger.Logger
}

// New creates a client for the given API credentials with configuration options.
func New(clientID, clientSecret string, opts ...Option) *Client {
	hc := &http.Client{}
	c := &Client{
		apiURL: DefaultAPIURL,
		http:   hc,
		tokens: &tokenSource{
			clientID:     clientID,
			clientSecret: clientSecret,
			tokenURL:     DefaultTokenURL,
			http:         hc,
			now:          time.Now,
		},
		limiter:    rate.NewLimiter(defaultRPS, 1),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		timeout:    defaultTimeout,
		log:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   jsoniter.RawMessage `json:"data"`
	Errors []graphQLError      `json:"errors"`
}

// query runs a GraphQL operation and decodes its data object into out,
// retrying transient failures up to maxRetries attempts.
func (c *Client) query(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return errors.WithStack(err)
	}

	c.log.Debug(ctx, "graphql query", logger.String("operation", operation), logger.Any("variables", vars))

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err = c.attempt(ctx, operation, body, out)
		status := metrics.StatusSuccess
		if err != nil {
			status = metrics.StatusFailure
		}
		metrics.RecordProviderRequest(operation, status, float64(time.Since(start).Milliseconds()))

		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(err) || attempt >= c.maxRetries {
			metrics.RecordError("warcraftlogs", errorType(err))
			return err
		}

		c.log.Warn(ctx, "graphql attempt failed, retrying",
			logger.String("operation", operation),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)

		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}
}

func (c *Client) attempt(ctx context.Context, operation string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; encoding=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.tokens.Reset()
		return errors.WithStack(&APIError{Operation: operation, StatusCode: resp.StatusCode})
	case resp.StatusCode != http.StatusOK:
		apiErr := &APIError{Operation: operation, StatusCode: resp.StatusCode}
		var gr graphQLResponse
		if json.NewDecoder(resp.Body).Decode(&gr) == nil {
			apiErr.Messages = messages(gr.Errors)
		}
		return errors.WithStack(apiErr)
	}

	var gr graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return errors.Wrap(err, "decode graphql response")
	}
	if len(gr.Errors) > 0 {
		return errors.WithStack(&APIError{Operation: operation, StatusCode: resp.StatusCode, Messages: messages(gr.Errors)})
	}
	if len(gr.Data) == 0 {
		return errors.WithStack(&APIError{Operation: operation, StatusCode: resp.StatusCode, Messages: []string{"empty data"}})
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return errors.Wrap(err, "decode "+operation+" data")
	}
	return nil
}

func messages(errs []graphQLError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

// retryable reports whether another attempt may succeed. Credentials refused
// by the token endpoint are final.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return !errors.Is(err, ErrAuth)
}
