package httputil

import (
	"context"
	"net/http"
	"time"

	"github.com/matzehuels/pangolin/pkg/observability"
)

// Do sends req with client and reports the request, its response or its
// failure to the HTTP hooks. A nil client means http.DefaultClient.
func Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req = req.WithContext(ctx)

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}
