package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Compile hooks
	c := NoopCompileHooks{}
	c.OnDiscover(ctx, "icons", 12, time.Second, nil)
	c.OnAssembleStart(ctx, 12)
	c.OnAssembleComplete(ctx, 12, time.Second, nil)
	c.OnArchiveFailure(ctx, "user", errors.New("disk full"))
	c.OnSerializeComplete(ctx, 4096, time.Second, nil)
	c.OnMinifyComplete(ctx, "local", time.Second, nil)

	// Cache hooks
	ch := NoopCacheHooks{}
	ch.OnCacheHit(ctx, "minify")
	ch.OnCacheMiss(ctx, "minify")
	ch.OnCacheSet(ctx, "minify", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "javascript-minifier.com", "/raw")
	h.OnResponse(ctx, "POST", "javascript-minifier.com", "/raw", 200, time.Second)
	h.OnError(ctx, "POST", "javascript-minifier.com", "/raw", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Compile().(NoopCompileHooks); !ok {
		t.Error("Compile() should return NoopCompileHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customCompile := &testCompileHooks{}
	SetCompileHooks(customCompile)
	if Compile() != customCompile {
		t.Error("SetCompileHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Compile().(NoopCompileHooks); !ok {
		t.Error("Reset() should restore NoopCompileHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCompileHooks{}
	SetCompileHooks(custom)
	SetCompileHooks(nil)
	if Compile() != custom {
		t.Error("SetCompileHooks(nil) should keep the previous hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testCompileHooks{}
	SetCompileHooks(h)

	ctx := context.Background()
	Compile().OnAssembleStart(ctx, 3)
	Compile().OnArchiveFailure(ctx, "user", errors.New("denied"))

	if h.assembleStarts != 1 || h.archiveFailures != 1 {
		t.Errorf("events = %d starts, %d failures, want 1 and 1", h.assembleStarts, h.archiveFailures)
	}
}

type testCompileHooks struct {
	NoopCompileHooks
	assembleStarts  int
	archiveFailures int
}

func (h *testCompileHooks) OnAssembleStart(context.Context, int) { h.assembleStarts++ }
func (h *testCompileHooks) OnArchiveFailure(context.Context, string, error) {
	h.archiveFailures++
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
