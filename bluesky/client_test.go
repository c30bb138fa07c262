package bluesky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSessionAndRecordServer(t *testing.T) (*httptest.Server, *map[string]any) {
	t.Helper()
	record := &map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/xrpc/com.atproto.server.createSession":
			fmt.Fprint(w, `{"accessJwt": "jwt-token", "did": "did:plc:abc123"}`)
		case "/xrpc/com.atproto.repo.createRecord":
			require.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*record = body
			fmt.Fprint(w, `{"uri": "at://did:plc:abc123/app.bsky.feed.post/1"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, record
}

func TestConfigured(t *testing.T) {
	logger := zaptest.NewLogger(t)
	assert.True(t, NewClient("me.bsky.social", "app-pass", logger).Configured())
	assert.False(t, NewClient("", "app-pass", logger).Configured())
	assert.False(t, NewClient("me.bsky.social", "", logger).Configured())
}

func TestPostAuthenticatesAndAppendsLinkFacet(t *testing.T) {
	srv, record := newSessionAndRecordServer(t)
	client := NewClient("me.bsky.social", "app-pass", zaptest.NewLogger(t), WithBaseURL(srv.URL))

	require.NoError(t, client.Post(context.Background(), "New episode out now!", "https://podcast.example.com"))

	body := *record
	assert.Equal(t, "did:plc:abc123", body["repo"])
	assert.Equal(t, "app.bsky.feed.post", body["collection"])

	rec := body["record"].(map[string]any)
	text := rec["text"].(string)
	assert.Equal(t, "New episode out now!\n\nhttps://podcast.example.com", text)

	facets := rec["facets"].([]any)
	require.Len(t, facets, 1)
	index := facets[0].(map[string]any)["index"].(map[string]any)
	assert.Equal(t, float64(len(text)-len("https://podcast.example.com")), index["byteStart"])
	assert.Equal(t, float64(len(text)), index["byteEnd"])

	feature := facets[0].(map[string]any)["features"].([]any)[0].(map[string]any)
	assert.Equal(t, "app.bsky.richtext.facet#link", feature["$type"])
	assert.Equal(t, "https://podcast.example.com", feature["uri"])
}

func TestPostWithoutLinkHasNoFacets(t *testing.T) {
	srv, record := newSessionAndRecordServer(t)
	client := NewClient("me.bsky.social", "app-pass", zaptest.NewLogger(t), WithBaseURL(srv.URL))

	require.NoError(t, client.Post(context.Background(), "Plain announcement", ""))

	rec := (*record)["record"].(map[string]any)
	assert.Equal(t, "Plain announcement", rec["text"])
	assert.NotContains(t, rec, "facets")
}

func TestAuthenticateFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "AuthenticationRequired"}`)
	}))
	defer srv.Close()

	client := NewClient("me.bsky.social", "wrong", zaptest.NewLogger(t), WithBaseURL(srv.URL))
	assert.Error(t, client.Authenticate(context.Background()))
}
