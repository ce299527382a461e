package httpcache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, ttl time.Duration) (*http.Client, *Transport) {
	tr := &Transport{Dir: t.TempDir(), TTL: ttl, Log: zerolog.Nop()}
	return &http.Client{Transport: tr}, tr
}

func TestCacheHit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `{"close": 12.5}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, time.Hour)
	for range 3 {
		var got struct{ Close float64 }
		require.NoError(t, GetJSON(context.Background(), client, srv.URL+"/api/real-time/VALE3.SA", &got))
		assert.Equal(t, 12.5, got.Close)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestCacheExpires(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	client, tr := newTestClient(t, time.Hour)
	_, err := Get(context.Background(), client, srv.URL)
	require.NoError(t, err)

	// age every entry beyond the TTL.
	entries, err := os.ReadDir(tr.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(tr.Dir, entries[0].Name()), old, old))

	_, err = Get(context.Background(), client, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestErrorsAreNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "no such ticker", http.StatusNotFound)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, time.Hour)
	for range 2 {
		_, err := Get(context.Background(), client, srv.URL+"/api/eod/XXXX")
		var serr *StatusError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, http.StatusNotFound, serr.Code)
		assert.Contains(t, err.Error(), "/api/eod/XXXX")
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestNoCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, 0)
	for range 2 {
		_, err := Get(context.Background(), client, srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}
