package sources

import (
	"fmt"
	"sort"

	"sci-cast/config"
	"sci-cast/models"

	"go.uber.org/zap"
)

// Source ist das Interface, das jede Publikationsquelle (z.B. arXiv, PubMed) implementieren muss.
type Source interface {
	// FetchArticles sucht aktuelle Publikationen im konfigurierten Zeitfenster
	// und gibt eine Liste von standardisierten Article-Modellen zurück.
	FetchArticles() ([]*models.Article, error)

	// FetchFullText holt den Volltext für den quellenspezifischen Locator.
	FetchFullText(locator string) (string, error)

	// Name gibt den eindeutigen Namen der Quelle zurück (z.B. "arxiv").
	Name() string
}

// Factory erstellt eine Quelle für die gegebenen Suchparameter.
type Factory func(cfg *config.Config, logger *zap.Logger, params models.QueryParams) Source

var registry = map[string]Factory{}

// Register trägt eine Quellen-Factory unter ihrem Namen ein.
// Doppelte Registrierung ist ein Programmierfehler.
func Register(name string, factory Factory) {
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("source %q already registered", name))
	}
	registry[name] = factory
}

// New erstellt die Quelle mit dem gegebenen Namen.
func New(name string, cfg *config.Config, logger *zap.Logger, params models.QueryParams) (Source, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (known: %v)", name, Names())
	}
	return factory(cfg, logger, params), nil
}

// Names gibt alle registrierten Quellennamen sortiert zurück.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
