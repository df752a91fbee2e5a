package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/siteaudit"
	sahttp "github.com/fwojciec/siteaudit/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func htmlHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusOK, "<html><body>Hello World</body></html>"))
		defer server.Close()

		fetcher := sahttp.NewFetcher()
		defer fetcher.Close()

		html, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", html)
	})

	t.Run("sends the user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
			htmlHandler(http.StatusOK, "<html></html>")(w, r)
		}))
		defer server.Close()

		_, err := sahttp.NewFetcher().Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, sahttp.DefaultUserAgent, got)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			htmlHandler(http.StatusOK, "response")(w, r)
		}))
		defer server.Close()

		// Use a very short timeout that will expire before server responds
		fetcher := sahttp.NewFetcher(sahttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			htmlHandler(http.StatusOK, "response")(w, r)
		}))
		defer server.Close()

		fetcher := sahttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("returns error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := sahttp.NewFetcher(sahttp.WithTimeout(100 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
	})

	t.Run("returns error for non-2xx status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusNotFound, "404 Not Found"))
		defer server.Close()

		_, err := sahttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("accepts other 2xx status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusNonAuthoritativeInfo, "<p>ok</p>"))
		defer server.Close()

		html, err := sahttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<p>ok</p>", html)
	})

	t.Run("rejects bodies larger than the limit", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusOK, strings.Repeat("x", 101)))
		defer server.Close()
		fetcher := sahttp.NewFetcher(sahttp.WithMaxBodySize(100))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 100 bytes")

		_, err = fetcher.Load(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 100 bytes")
	})

	t.Run("accepts bodies at the limit", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusOK, strings.Repeat("x", 100)))
		defer server.Close()

		html, err := sahttp.NewFetcher(sahttp.WithMaxBodySize(100)).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, html, 100)
	})

	t.Run("returns error for non-HTML content", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF"))
		}))
		defer server.Close()

		_, err := sahttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content type")
	})

	t.Run("follows redirects up to the limit", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/final", htmlHandler(http.StatusOK, "final"))
		mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		})
		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/final", http.StatusMovedPermanently)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		fetcher := sahttp.NewFetcher(sahttp.WithMaxRedirects(2))

		html, err := fetcher.Fetch(context.Background(), server.URL+"/start")
		require.NoError(t, err)
		assert.Equal(t, "final", html)

		_, err = fetcher.Fetch(context.Background(), server.URL+"/loop")
		require.Error(t, err)
	})
}

func TestFetcher_Load(t *testing.T) {
	t.Parallel()

	t.Run("returns snapshot with status and size", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusOK, "<html><title>x</title></html>"))
		defer server.Close()

		snap, err := sahttp.NewFetcher().Load(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, server.URL, snap.URL)
		assert.Equal(t, "<html><title>x</title></html>", snap.HTML)
		assert.Equal(t, http.StatusOK, snap.StatusCode)
		assert.Equal(t, len(snap.HTML), snap.Bytes)
		assert.Positive(t, snap.LoadTime)
	})

	t.Run("client errors are reported in the snapshot", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusNotFound, "<h1>missing</h1>"))
		defer server.Close()

		snap, err := sahttp.NewFetcher().Load(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, snap.StatusCode)
	})

	t.Run("server errors fail the load", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(htmlHandler(http.StatusBadGateway, "bad gateway"))
		defer server.Close()

		_, err := sahttp.NewFetcher().Load(context.Background(), server.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("invalid URL", func(t *testing.T) {
		t.Parallel()

		_, err := sahttp.NewFetcher().Load(context.Background(), "http://[::1]:namedport")

		assert.Equal(t, siteaudit.EINVALID, siteaudit.ErrorCode(err))
	})
}

// Compile-time verification that Fetcher implements the domain interfaces
var (
	_ siteaudit.Fetcher    = (*sahttp.Fetcher)(nil)
	_ siteaudit.PageLoader = (*sahttp.Fetcher)(nil)
)
