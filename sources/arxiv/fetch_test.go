package arxiv

import (
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

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title>Deep Learning
  for Protein   Folding</title>
    <summary>  We present a new approach.  </summary>
    <published>2026-08-20T17:30:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <arxiv:doi xmlns:arxiv="http://arxiv.org/schemas/atom">10.48550/arXiv.2401.00001</arxiv:doi>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.00001v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v1</id>
    <title>No PDF Here</title>
    <summary>Abstract only.</summary>
    <published>2026-08-21T09:00:00Z</published>
    <link href="http://arxiv.org/abs/2401.00002v1" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func newTestFetcher(t *testing.T, baseURL string) *Fetcher {
	t.Helper()
	cfg := &config.Config{ArxivBaseURL: baseURL}
	params := models.NewQueryParams("protein folding",
		time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), 50)
	return NewFetcher(cfg, zaptest.NewLogger(t), params)
}

func TestFetchArticlesParsesAtomFeed(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(atomFeed))
	}))
	defer srv.Close()

	articles, err := newTestFetcher(t, srv.URL).FetchArticles()
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "Deep Learning for Protein Folding", articles[0].Title)
	assert.Equal(t, "We present a new approach.", articles[0].Summary)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", articles[0].URL)
	assert.Equal(t, "Ada Lovelace, Alan Turing", articles[0].Authors)
	assert.Equal(t, "10.48550/arXiv.2401.00001", articles[0].DOI)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00001v1", articles[0].Locator)
	assert.Equal(t, "arxiv", articles[0].Source)
	assert.Equal(t, "202608201730", articles[0].PublishedDate)

	assert.Empty(t, articles[1].Locator, "entry without pdf link has no locator")

	assert.Contains(t, gotQuery, "all:protein folding")
	assert.Contains(t, gotQuery, "submittedDate:[202608140000 TO 202608210000]")
}

func TestFetchFullTextFallbacks(t *testing.T) {
	fetcher := newTestFetcher(t, "http://unused")

	text, err := fetcher.FetchFullText("")
	require.NoError(t, err)
	assert.Equal(t, "Full text not available", text)

	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	text, err = fetcher.FetchFullText(notFound.URL + "/missing.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Full text retrieval failed", text)

	notAPDF := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a pdf document"))
	}))
	defer notAPDF.Close()

	text, err = fetcher.FetchFullText(notAPDF.URL + "/broken.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Text extraction failed", text)
}
