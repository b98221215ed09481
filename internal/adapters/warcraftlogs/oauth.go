package warcraftlogs

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/okian/guildscore/pkg/metrics"
	"github.com/pkg/errors"
)

// tokenSkew renews a token this long before the provider says it expires.
const tokenSkew = time.Minute

// tokenSource exchanges client credentials for a bearer token and caches it
// until shortly before expiry.
type tokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *http.Client
	now          func() time.Time

	mu      sync.Mutex
	value   string
	expires time.Time
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Token returns a cached bearer token, fetching a new one when needed.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.value != "" && now.Before(t.expires) {
		return t.value, nil
	}
	if t.clientID == "" || t.clientSecret == "" {
		return "", errors.Wrap(ErrAuth, "client credentials not configured")
	}

	form := url.Values{"grant_type": []string{"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.clientID, t.clientSecret)

	resp, err := t.http.Do(req)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer func() { _ = resp.Body.Close() }()

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil && resp.StatusCode == http.StatusOK {
		return "", errors.Wrap(err, "decode token response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest || tok.Error != "":
		reason := tok.Error
		if tok.ErrorDescription != "" {
			reason += ": " + tok.ErrorDescription
		}
		if reason == "" {
			reason = resp.Status
		}
		return "", errors.Wrap(ErrAuth, reason)
	case resp.StatusCode != http.StatusOK:
		return "", errors.WithStack(&APIError{Operation: "token", StatusCode: resp.StatusCode})
	case tok.AccessToken == "":
		return "", errors.Wrap(ErrAuth, "empty access token")
	}

	t.value = tok.AccessToken
	t.expires = now.Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSkew)
	metrics.RecordTokenRefresh()
	return t.value, nil
}

// Reset drops the cached token so the next call fetches a fresh one.
func (t *tokenSource) Reset() {
	t.mu.Lock()
	t.value = ""
	t.mu.Unlock()
}
