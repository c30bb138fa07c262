package arxiv

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sci-cast/config"
	"sci-cast/models"
	"sci-cast/sources"
	"sci-cast/sources/pdftext"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Ersatztexte, wenn kein Volltext beschafft werden kann. Die Pipeline bricht
// dadurch nicht ab; der Artikel wird mit diesem Text weiterverarbeitet.
const (
	textNotAvailable    = "Full text not available"
	textRetrievalFailed = "Full text retrieval failed"
	textExtractFailed   = "Text extraction failed"
)

func init() {
	sources.Register("arxiv", func(cfg *config.Config, logger *zap.Logger, params models.QueryParams) sources.Source {
		return NewFetcher(cfg, logger, params)
	})
}

// Fetcher kapselt die Interaktion mit der arXiv Atom-API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Params models.QueryParams
}

// NewFetcher erstellt eine neue Instanz des arXiv-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, params models.QueryParams) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Params: params}
}

// Name gibt den Namen der Quelle zurück.
func (f *Fetcher) Name() string {
	return "arxiv"
}

// FetchArticles sucht Publikationen im Zeitfenster der Suchparameter.
// Das Datumsfenster wird serverseitig über submittedDate eingeschränkt.
func (f *Fetcher) FetchArticles() ([]*models.Article, error) {
	searchURL := f.buildSearchURL()
	f.Logger.Debug("querying arxiv", zap.String("url", searchURL))

	resp, err := httpClient.Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv query failed: status %d", resp.StatusCode)
	}

	var feed Feed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arxiv feed parsing failed: %w", err)
	}

	articles := make([]*models.Article, 0, len(feed.Entries))
	for i := range feed.Entries {
		articles = append(articles, f.mapEntry(&feed.Entries[i]))
	}
	f.Logger.Info("arxiv search finished", zap.Int("count", len(articles)))
	return articles, nil
}

// FetchFullText lädt das PDF unter dem Locator herunter und extrahiert den Text.
// Fehlschläge liefern einen Ersatztext statt eines Fehlers.
func (f *Fetcher) FetchFullText(locator string) (string, error) {
	if locator == "" {
		return textNotAvailable, nil
	}

	resp, err := httpClient.Get(locator)
	if err != nil {
		f.Logger.Warn("arxiv pdf download failed", zap.String("url", locator), zap.Error(err))
		return textRetrievalFailed, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.Logger.Warn("arxiv pdf download failed", zap.String("url", locator), zap.Int("status", resp.StatusCode))
		return textRetrievalFailed, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return textRetrievalFailed, nil
	}

	text, err := pdftext.Extract(data)
	if err != nil {
		f.Logger.Warn("arxiv pdf extraction failed", zap.String("url", locator), zap.Error(err))
		return textExtractFailed, nil
	}
	return text, nil
}

// buildSearchURL baut die Such-URL mit submittedDate-Fenster im Format JJJJMMTThhmm.
func (f *Fetcher) buildSearchURL() string {
	const dateFormat = "200601021504"
	query := fmt.Sprintf("all:%s AND submittedDate:[%s TO %s]",
		f.Params.Query(),
		f.Params.StartDate().Format(dateFormat),
		f.Params.EndDate().Format(dateFormat))

	return fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		f.Config.ArxivBaseURL, url.QueryEscape(query), f.Params.MaxResults())
}

// mapEntry wandelt einen Atom-Entry in unser Article-Modell um.
func (f *Fetcher) mapEntry(entry *Entry) *models.Article {
	published := entry.Published
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		published = t.Format("200601021504")
	}

	names := make([]string, 0, len(entry.Authors))
	for _, author := range entry.Authors {
		if name := strings.TrimSpace(author.Name); name != "" {
			names = append(names, name)
		}
	}

	return &models.Article{
		Title:         collapseWhitespace(entry.Title),
		Summary:       strings.TrimSpace(entry.Summary),
		URL:           entry.ID,
		Authors:       strings.Join(names, ", "),
		DOI:           strings.TrimSpace(entry.DOI),
		Locator:       entry.PDFLink(),
		Source:        f.Name(),
		PublishedDate: published,
	}
}

// collapseWhitespace ersetzt Zeilenumbrüche und Mehrfach-Leerzeichen aus
// Atom-Titeln durch einzelne Leerzeichen.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
