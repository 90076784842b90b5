package minify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/pangolin/pkg/buildinfo"
	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/httputil"
)

// DefaultRemoteURL is the public minification service.
const DefaultRemoteURL = "https://javascript-minifier.com/raw"

// maxResponseSize caps the minified body read from the service.
const maxResponseSize = 32 << 20

// Remote minifies through an HTTP service.
type Remote struct {
	URL    string
	Client *http.Client

	// Attempts and Delay configure retries of network errors and 5xx
	// responses. Zero values mean 3 attempts starting at one second.
	Attempts int
	Delay    time.Duration
}

// NewRemote creates a Remote for endpoint (DefaultRemoteURL when empty).
func NewRemote(endpoint string, client *http.Client) *Remote {
	if endpoint == "" {
		endpoint = DefaultRemoteURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Remote{URL: endpoint, Client: client}
}

// Name implements Minifier.
func (*Remote) Name() string { return "remote" }

// Minify implements Minifier.
func (r *Remote) Minify(ctx context.Context, src string) (string, error) {
	if err := errors.ValidateURL(r.URL); err != nil {
		return "", err
	}
	attempts, delay := r.Attempts, r.Delay
	if attempts <= 0 {
		attempts = 3
	}
	if delay <= 0 {
		delay = time.Second
	}

	var out string
	err := httputil.Retry(ctx, attempts, delay, func() error {
		var err error
		out, err = r.post(ctx, src)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(errors.ErrCodeTimeout, err, "minify request to %s", r.URL)
		}
		return "", errors.Wrap(errors.ErrCodeMinifyFailed, err, "minify request to %s", r.URL)
	}
	return out, nil
}

func (r *Remote) post(ctx context.Context, src string) (string, error) {
	form := url.Values{"input": {src}}
	req, err := http.NewRequest(http.MethodPost, r.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := httputil.Do(ctx, r.Client, req)
	if err != nil {
		return "", httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "POST %s", r.URL))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read response"))
	}

	switch {
	case resp.StatusCode >= 500:
		return "", httputil.Retryable(fmt.Errorf("server error: %s", resp.Status))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	case len(strings.TrimSpace(string(body))) == 0:
		return "", fmt.Errorf("empty response body")
	}
	return string(body), nil
}
