package pubmed

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"sci-cast/config"
	"sci-cast/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const esearchResponse = `{"esearchresult": {"idlist": ["1234567"]}}`

const efetchResponse = `<?xml version="1.0" encoding="UTF-8"?>
<pmc-articleset>
  <article>
    <front>
      <article-meta>
        <article-id pub-id-type="pmc">1234567</article-id>
        <article-id pub-id-type="doi">10.1000/example</article-id>
        <title-group>
          <article-title>Gut Microbiome and Immunity</article-title>
        </title-group>
        <contrib-group>
          <contrib contrib-type="author">
            <name><surname>Koch</surname><given-names>Robert</given-names></name>
          </contrib>
          <contrib contrib-type="author">
            <name><surname>Nightingale</surname><given-names>Florence</given-names></name>
          </contrib>
        </contrib-group>
        <pub-date pub-type="epub">
          <day>5</day>
          <month>8</month>
          <year>2026</year>
        </pub-date>
        <abstract>The microbiome shapes immune responses.</abstract>
      </article-meta>
    </front>
    <body>
      <p>Opening paragraph.</p>
      <sec>
        <title>Methods</title>
        <p>We sequenced samples.</p>
        <sec>
          <p>Nested detail.</p>
        </sec>
      </sec>
    </body>
  </article>
</pmc-articleset>`

func newTestFetcher(t *testing.T, baseURL string) *Fetcher {
	t.Helper()
	cfg := &config.Config{PubMedBaseURL: baseURL}
	params := models.NewQueryParams("microbiome",
		time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), 50)
	return NewFetcher(cfg, zaptest.NewLogger(t), params)
}

func newEUtilsServer(t *testing.T) (*httptest.Server, *url.Values) {
	t.Helper()
	captured := &url.Values{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			*captured = r.URL.Query()
			fmt.Fprint(w, esearchResponse)
		case "/efetch.fcgi":
			fmt.Fprint(w, efetchResponse)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestFetchArticlesMapsEFetchResponse(t *testing.T) {
	srv, query := newEUtilsServer(t)

	articles, err := newTestFetcher(t, srv.URL).FetchArticles()
	require.NoError(t, err)
	require.Len(t, articles, 1)

	article := articles[0]
	assert.Equal(t, "Gut Microbiome and Immunity", article.Title)
	assert.Equal(t, "The microbiome shapes immune responses.", article.Summary)
	assert.Equal(t, "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1234567/", article.URL)
	assert.Equal(t, "Robert Koch, Florence Nightingale", article.Authors)
	assert.Equal(t, "10.1000/example", article.DOI)
	assert.Equal(t, "PMC1234567", article.Locator)
	assert.Equal(t, "pubmed", article.Source)
	assert.Equal(t, "2026/08/05", article.PublishedDate)

	assert.Equal(t, `microbiome AND "open access"[filter]`, query.Get("term"))
	assert.Equal(t, "pmc", query.Get("db"))
	assert.Equal(t, "2026/08/14", query.Get("mindate"))
	assert.Equal(t, "2026/08/21", query.Get("maxdate"))
}

func TestFetchArticlesNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"esearchresult": {"idlist": []}}`)
	}))
	defer srv.Close()

	articles, err := newTestFetcher(t, srv.URL).FetchArticles()
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFetchFullTextCollectsBodyParagraphs(t *testing.T) {
	srv, _ := newEUtilsServer(t)

	text, err := newTestFetcher(t, srv.URL).FetchFullText("PMC1234567")
	require.NoError(t, err)
	assert.Equal(t, "Opening paragraph.\n\nMethods\n\nWe sequenced samples.\n\nNested detail.", text)
}

func TestFetchFullTextEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<pmc-articleset>
  <article>
    <front><article-meta>
      <article-id pub-id-type="pmc">99</article-id>
      <title-group><article-title>Abstract only</article-title></title-group>
    </article-meta></front>
  </article>
</pmc-articleset>`)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL).FetchFullText("PMC99")
	assert.Error(t, err)
}

func TestPMCIDAddsPrefix(t *testing.T) {
	var article Article
	require.NoError(t, xml.Unmarshal([]byte(`<article><front><article-meta>
		<article-id pub-id-type="doi">10.1000/x</article-id>
		<article-id pub-id-type="pmc">42</article-id>
	</article-meta></front></article>`), &article))
	assert.Equal(t, "PMC42", article.PMCID())
}
