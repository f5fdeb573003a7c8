package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wisp.relay/app/config"
	"wisp.relay/pkg/relayinfo"
	"wisp.relay/pkg/storage"
)

func newTestServer(t *testing.T) *Server {
	store, err := storage.Open(t.TempDir(), 21*24*time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.C{
		AppName:           "wisp-test",
		MaxFutureDrift:    15 * time.Minute,
		EventsPerMinute:   30,
		RequestsPerMinute: 60,
		MaxMessageBytes:   65536,
		MaxEventTags:      100,
	}
	return NewServer(context.Background(), cfg, store)
}

func TestServer_ServesRelayInformationDocument(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/nostr+json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/nostr+json", rec.Header().Get("Content-Type"))

	var doc relayinfo.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "wisp-test", doc.Name)
	assert.Equal(t, []int{1, 9, 11, 20, 40}, doc.SupportedNIPs)
	assert.Equal(t, 8, doc.Limitation.MaxSubscriptions)
	assert.Equal(t, 4, doc.Limitation.MaxFilters)
	assert.Equal(t, storage.MaxQueryLimit, doc.Limitation.MaxLimit)
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGetRemoteFromReq_PrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("Forwarded", `for="203.0.113.7";proto=https`)
	assert.Equal(t, "203.0.113.7", GetRemoteFromReq(req))
}

func TestGetRemoteFromReq_FallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", GetRemoteFromReq(req))
}
