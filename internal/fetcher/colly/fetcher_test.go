package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
)

const samplePage = `<html><head><title>T</title><meta name="description" content="D"></head>` +
	`<body><h1>H</h1></body></html>`

func TestFetchReturnsPage(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, samplePage)
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "page-analyzer-test", Timeout: time.Second}, nil)
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Equal(t, samplePage, string(page.Body))
	require.Equal(t, "page-analyzer-test", gotUA.Load())
}

func TestFetchAllowsRevisit(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second}, nil)
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), hits.Load())
}

func TestFetchFollowsRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<title>moved</title>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(Config{Timeout: time.Second}, nil)
	page, err := f.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Contains(t, string(page.Body), "moved")
}

func TestFetchErrorStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				fmt.Fprint(w, "<h1>nope</h1>")
			}))
			defer srv.Close()

			f := New(Config{Timeout: time.Second}, nil)
			_, err := f.Fetch(context.Background(), srv.URL)
			var fetchErr *analyzer.FetchError
			require.ErrorAs(t, err, &fetchErr)
			require.Equal(t, status, fetchErr.StatusCode)
			require.Equal(t, srv.URL, fetchErr.URL)
		})
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	f := New(Config{Timeout: time.Second}, nil)
	_, err := f.Fetch(context.Background(), addr)
	var fetchErr *analyzer.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Zero(t, fetchErr.StatusCode)
}

func TestFetchDegenerateURL(t *testing.T) {
	t.Parallel()

	f := New(Config{Timeout: time.Second}, nil)
	_, err := f.Fetch(context.Background(), "://")
	var fetchErr *analyzer.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{Timeout: 5 * time.Second}, nil)
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuildCollector(t *testing.T) {
	t.Parallel()

	f := New(Config{UserAgent: "coverage-agent"}, nil)
	collector := f.buildCollector()
	require.Equal(t, "coverage-agent", collector.UserAgent)
	require.True(t, collector.AllowURLRevisit)
	require.True(t, collector.ParseHTTPErrorResponse)
	require.True(t, collector.IgnoreRobotsTxt)
	require.Equal(t, defaultTimeout, f.cfg.Timeout)
}

func TestConfigureCollectorHooks(t *testing.T) {
	t.Parallel()

	f := New(Config{}, nil)
	var result analyzer.Page
	var fetchErr error

	hooks := &stubHooks{}
	f.configureCollectorHooks(hooks, &result, &fetchErr)
	require.NotNil(t, hooks.onResponse)
	require.NotNil(t, hooks.onError)

	hooks.onResponse(&colly.Response{
		StatusCode: http.StatusCreated,
		Body:       []byte("body"),
		Request: &colly.Request{
			URL: mustParseURL(t, "https://example.com"),
		},
	})
	require.Equal(t, http.StatusCreated, result.StatusCode)
	require.Equal(t, "body", string(result.Body))
	require.Equal(t, "https://example.com", result.URL)

	hooks.onError(nil, errors.New("boom"))
	require.EqualError(t, fetchErr, "boom")
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse url %q: %v", raw, err)
	}
	return u
}

type stubHooks struct {
	onResponse colly.ResponseCallback
	onError    colly.ErrorCallback
}

func (s *stubHooks) OnResponse(cb colly.ResponseCallback) {
	s.onResponse = cb
}

func (s *stubHooks) OnError(cb colly.ErrorCallback) {
	s.onError = cb
}
