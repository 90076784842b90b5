// Package httputil provides the HTTP plumbing shared by the minifier client
// and the static gallery server.
//
// # Overview
//
//   - [Retry]: automatic retry with exponential backoff
//   - [Do]: an HTTP round trip reported to the observability hooks
//   - [NewStaticRouter]: a chi router serving several directories as one tree
//   - [ListenAndServe]: runs a server until its context ends
//
// # Retry
//
// [Retry] only retries errors wrapped with [RetryableError]. Callers decide
// what is transient, typically network errors and 5xx responses:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := httputil.Do(ctx, client, req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// # Static files
//
// The router mirrors a classic "serve ./dist, then ./public" setup: a
// request is answered from the first directory that has the file.
package httputil
