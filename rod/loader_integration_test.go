//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/siteaudit/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T) *rod.Loader {
	t.Helper()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	l := rod.NewLoader(manager)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLoader_Load_ReturnsRenderedHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
<div id="content">Loading...</div>
<script>
document.getElementById('content').textContent = 'JavaScript Rendered';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	snap, err := newLoader(t).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, snap.HTML, "JavaScript Rendered")
	assert.Equal(t, srv.URL, snap.URL)
	assert.Positive(t, snap.LoadTime)
	assert.Positive(t, snap.Bytes)
}

func TestLoader_Load_ServerErrorFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`<html><body>down</body></html>`))
	}))
	defer srv.Close()

	_, err := newLoader(t).Load(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestLoader_Load_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		select {}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := newLoader(t).Load(ctx, srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_Load_ReportsClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<html><body>missing</body></html>`))
	}))
	defer srv.Close()

	snap, err := newLoader(t).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, snap.StatusCode)
}
