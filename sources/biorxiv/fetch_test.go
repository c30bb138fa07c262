package biorxiv

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sci-cast/config"
	"sci-cast/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const detailsPage = `{
  "messages": [{"status": "ok", "cursor": 0, "count": 3, "total": "3"}],
  "collection": [
    {"doi": "10.1101/2026.08.20.111111", "title": "CRISPR screens in yeast", "authors": "Doe, J.; Roe, R.", "date": "2026-08-20", "version": "2", "abstract": "A genome-wide screen."},
    {"doi": "10.1101/2026.08.20.222222", "title": "Unrelated plant biology", "date": "2026-08-20", "version": "1", "abstract": "Leaves and roots."},
    {"doi": "10.1101/2026.08.21.333333", "title": "Another study", "date": "2026-08-21", "version": "1", "abstract": "We used crispr base editing."}
  ]
}`

func newTestFetcher(t *testing.T, baseURL string, maxResults int) *Fetcher {
	t.Helper()
	cfg := &config.Config{BiorxivBaseURL: baseURL}
	params := models.NewQueryParams("CRISPR",
		time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), maxResults)
	return NewFetcher(cfg, zaptest.NewLogger(t), params)
}

func TestFetchArticlesFiltersByKeyword(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, detailsPage)
	}))
	defer srv.Close()

	articles, err := newTestFetcher(t, srv.URL, 50).FetchArticles()
	require.NoError(t, err)
	require.Len(t, articles, 2, "keyword filter is case-insensitive over title and abstract")

	assert.Equal(t, "CRISPR screens in yeast", articles[0].Title)
	assert.Equal(t, "https://www.biorxiv.org/content/10.1101/2026.08.20.111111v2", articles[0].URL)
	assert.Equal(t, "https://www.biorxiv.org/content/10.1101/2026.08.20.111111v2.full.pdf", articles[0].Locator)
	assert.Equal(t, "biorxiv", articles[0].Source)
	assert.Equal(t, "Doe, J., Roe, R.", articles[0].Authors)
	assert.Equal(t, "10.1101/2026.08.20.111111", articles[0].DOI)
	assert.Equal(t, "2026-08-20", articles[0].PublishedDate)

	assert.Equal(t, "Another study", articles[1].Title)

	assert.Equal(t, "/2026-08-14/2026-08-21/0", gotPath)
}

func TestFetchArticlesAppliesResultCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, detailsPage)
	}))
	defer srv.Close()

	articles, err := newTestFetcher(t, srv.URL, 1).FetchArticles()
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "CRISPR screens in yeast", articles[0].Title)
}

func TestFetchArticlesPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL, 50).FetchArticles()
	assert.Error(t, err)
}
