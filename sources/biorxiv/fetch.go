package biorxiv

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sci-cast/config"
	"sci-cast/models"
	"sci-cast/sources"
	"sci-cast/sources/pdftext"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

const pageSize = 100

func init() {
	sources.Register("biorxiv", func(cfg *config.Config, logger *zap.Logger, params models.QueryParams) sources.Source {
		return NewFetcher(cfg, logger, params)
	})
}

// Fetcher kapselt die Interaktion mit der bioRxiv Details-API.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Params models.QueryParams
}

// NewFetcher erstellt eine neue Instanz des bioRxiv-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, params models.QueryParams) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Params: params}
}

// Name gibt den Namen der Quelle zurück.
func (f *Fetcher) Name() string {
	return "biorxiv"
}

// FetchArticles holt alle Preprints im Zeitfenster und filtert sie clientseitig
// nach den Suchbegriffen. Die API selbst kennt keine Stichwortsuche, nur das
// Datumsfenster; das Ergebnislimit greift daher erst nach dem Filtern.
func (f *Fetcher) FetchArticles() ([]*models.Article, error) {
	terms := make([]string, 0)
	for _, t := range f.Params.Terms() {
		terms = append(terms, strings.ToLower(t))
	}

	var articles []*models.Article
	for cursor := 0; ; cursor += pageSize {
		page, err := f.fetchPage(cursor)
		if err != nil {
			return nil, err
		}

		for i := range page.Collection {
			record := &page.Collection[i]
			if !matchesAny(record, terms) {
				continue
			}
			articles = append(articles, f.mapRecord(record))
			if f.Params.MaxResults() > 0 && len(articles) >= f.Params.MaxResults() {
				f.Logger.Info("biorxiv search finished", zap.Int("count", len(articles)))
				return articles, nil
			}
		}

		if len(page.Messages) == 0 || page.Messages[0].Count < pageSize {
			break
		}
	}

	f.Logger.Info("biorxiv search finished", zap.Int("count", len(articles)))
	return articles, nil
}

// FetchFullText lädt das PDF unter dem Locator herunter und extrahiert den Text.
func (f *Fetcher) FetchFullText(locator string) (string, error) {
	if locator == "" {
		return "", fmt.Errorf("no full text locator")
	}

	resp, err := httpClient.Get(locator)
	if err != nil {
		return "", fmt.Errorf("biorxiv pdf download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("biorxiv pdf download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("biorxiv pdf download failed: %w", err)
	}

	text, err := pdftext.Extract(data)
	if err != nil {
		return "", fmt.Errorf("biorxiv pdf extraction failed: %w", err)
	}
	return text, nil
}

// fetchPage holt eine Seite der Details-API ab dem gegebenen Cursor.
func (f *Fetcher) fetchPage(cursor int) (*DetailsResponse, error) {
	pageURL := fmt.Sprintf("%s/%s/%s/%d",
		f.Config.BiorxivBaseURL,
		f.Params.StartDate().Format("2006-01-02"),
		f.Params.EndDate().Format("2006-01-02"),
		cursor)
	f.Logger.Debug("querying biorxiv", zap.String("url", pageURL))

	resp, err := httpClient.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("biorxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("biorxiv query failed: status %d", resp.StatusCode)
	}

	var details DetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("biorxiv response parsing failed: %w", err)
	}
	return &details, nil
}

// mapRecord wandelt einen API-Record in unser Article-Modell um.
func (f *Fetcher) mapRecord(record *Record) *models.Article {
	contentURL := fmt.Sprintf("https://www.biorxiv.org/content/%sv%s", record.DOI, record.Version)
	return &models.Article{
		Title:         strings.TrimSpace(record.Title),
		Summary:       strings.TrimSpace(record.Abstract),
		URL:           contentURL,
		Authors:       joinAuthors(record.Authors),
		DOI:           record.DOI,
		Locator:       contentURL + ".full.pdf",
		Source:        f.Name(),
		PublishedDate: record.Date,
	}
}

// joinAuthors normalisiert die semikolonseparierte Autorenliste der API
// in eine kommaseparierte.
func joinAuthors(authors string) string {
	var names []string
	for _, name := range strings.Split(authors, ";") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// matchesAny prüft, ob Titel oder Abstract mindestens einen Suchbegriff enthalten.
func matchesAny(record *Record, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(record.Title + " " + record.Abstract)
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
