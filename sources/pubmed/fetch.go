package pubmed

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sci-cast/config"
	"sci-cast/models"
	"sci-cast/sources"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

func init() {
	sources.Register("pubmed", func(cfg *config.Config, logger *zap.Logger, params models.QueryParams) sources.Source {
		return NewFetcher(cfg, logger, params)
	})
}

// Fetcher kapselt die Interaktion mit den NCBI E-Utilities (db=pmc).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Params models.QueryParams
}

// NewFetcher erstellt eine neue Instanz des PubMed-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, params models.QueryParams) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Params: params}
}

// Name gibt den Namen der Quelle zurück.
func (f *Fetcher) Name() string {
	return "pubmed"
}

// FetchArticles sucht Open-Access-Artikel in PMC und holt deren Metadaten.
func (f *Fetcher) FetchArticles() ([]*models.Article, error) {
	ids, err := f.searchIDs()
	if err != nil {
		return nil, fmt.Errorf("pubmed id search failed: %w", err)
	}
	if len(ids) == 0 {
		f.Logger.Info("pubmed search finished", zap.Int("count", 0))
		return nil, nil
	}

	set, err := f.fetchArticleSet(ids)
	if err != nil {
		return nil, fmt.Errorf("pubmed detail fetch failed: %w", err)
	}

	articles := make([]*models.Article, 0, len(set.Articles))
	for i := range set.Articles {
		if a := f.mapArticle(&set.Articles[i]); a != nil {
			articles = append(articles, a)
		}
	}
	f.Logger.Info("pubmed search finished", zap.Int("count", len(articles)))
	return articles, nil
}

// FetchFullText holt den Artikel-Körper für eine PMCID.
func (f *Fetcher) FetchFullText(locator string) (string, error) {
	if locator == "" {
		return "", fmt.Errorf("no pmcid locator")
	}

	set, err := f.fetchArticleSet([]string{strings.TrimPrefix(locator, "PMC")})
	if err != nil {
		return "", fmt.Errorf("pubmed full text fetch failed: %w", err)
	}
	if len(set.Articles) == 0 {
		return "", fmt.Errorf("no article in efetch response for %s", locator)
	}

	text := set.Articles[0].Body.Text()
	if text == "" {
		return "", fmt.Errorf("no full text body for %s", locator)
	}
	return text, nil
}

// searchIDs führt eine ESearch-Abfrage (db=pmc, nur Open Access) im Zeitfenster durch.
func (f *Fetcher) searchIDs() ([]string, error) {
	term := fmt.Sprintf("%s AND \"open access\"[filter]", f.Params.Query())
	searchURL := fmt.Sprintf("%s/esearch.fcgi?db=pmc&term=%s&retmode=json&retmax=%d&datetype=pdat&mindate=%s&maxdate=%s",
		f.Config.PubMedBaseURL,
		url.QueryEscape(term),
		f.Params.MaxResults(),
		f.Params.StartDate().Format("2006/01/02"),
		f.Params.EndDate().Format("2006/01/02"))
	searchURL += f.identParams()
	f.Logger.Debug("querying pubmed esearch", zap.String("url", searchURL))

	resp, err := httpClient.Get(searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esearch failed: status %d", resp.StatusCode)
	}

	var esearchResp ESearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&esearchResp); err != nil {
		return nil, err
	}
	return esearchResp.ESearchResult.IdList, nil
}

// fetchArticleSet holt die XML-Details für eine Liste von PMC-IDs via EFetch.
func (f *Fetcher) fetchArticleSet(ids []string) (*ArticleSet, error) {
	efetchURL := fmt.Sprintf("%s/efetch.fcgi?db=pmc&id=%s&retmode=xml",
		f.Config.PubMedBaseURL, strings.Join(ids, ","))
	efetchURL += f.identParams()
	f.Logger.Debug("querying pubmed efetch", zap.String("url", efetchURL))

	resp, err := httpClient.Get(efetchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("efetch failed: status %d", resp.StatusCode)
	}

	var set ArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, err
	}
	return &set, nil
}

// identParams hängt API-Key, Tool und E-Mail an, sofern konfiguriert.
func (f *Fetcher) identParams() string {
	var extra string
	if f.Config.PubMedAPIKey != "" {
		extra += "&api_key=" + f.Config.PubMedAPIKey
	}
	if f.Config.PubMedTool != "" {
		extra += "&tool=" + url.QueryEscape(f.Config.PubMedTool)
	}
	if f.Config.PubMedEmail != "" {
		extra += "&email=" + url.QueryEscape(f.Config.PubMedEmail)
	}
	return extra
}

// mapArticle wandelt einen PMC-Artikel in unser Article-Modell um.
// Artikel ohne PMCID oder Titel werden verworfen.
func (f *Fetcher) mapArticle(article *Article) *models.Article {
	pmcID := article.PMCID()
	title := strings.TrimSpace(article.Front.ArticleMeta.Title)
	if pmcID == "" || title == "" {
		return nil
	}

	return &models.Article{
		Title:         title,
		Summary:       strings.TrimSpace(article.Front.ArticleMeta.Abstract),
		URL:           fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/", pmcID),
		Authors:       article.Authors(),
		DOI:           article.DOI(),
		Locator:       pmcID,
		Source:        f.Name(),
		PublishedDate: formatPubDate(article),
	}
}

// formatPubDate formatiert das Veröffentlichungsdatum als JJJJ/MM/TT.
func formatPubDate(article *Article) string {
	dates := article.Front.ArticleMeta.PubDates
	if len(dates) == 0 {
		return ""
	}
	d := dates[0]
	if d.Year == "" {
		return ""
	}
	return fmt.Sprintf("%s/%02d/%02d", d.Year, atoiOr(d.Month, 1), atoiOr(d.Day, 1))
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
