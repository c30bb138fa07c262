package services

import (
	"fmt"

	"sci-cast/models"
	"sci-cast/sources"

	"go.uber.org/zap"
)

// RetrievalAssistant besorgt Artikel und Volltexte aus genau einer Quelle.
type RetrievalAssistant struct {
	Source sources.Source
	Logger *zap.Logger
}

// NewRetrievalAssistant erstellt einen neuen RetrievalAssistant.
func NewRetrievalAssistant(source sources.Source, logger *zap.Logger) *RetrievalAssistant {
	return &RetrievalAssistant{Source: source, Logger: logger}
}

// Name gibt den Namen der zugrundeliegenden Quelle zurück.
func (r *RetrievalAssistant) Name() string {
	return r.Source.Name()
}

// FetchArticles holt die aktuellen Artikel der Quelle.
func (r *RetrievalAssistant) FetchArticles() ([]*models.Article, error) {
	articles, err := r.Source.FetchArticles()
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", r.Source.Name(), err)
	}
	r.Logger.Info("fetched articles", zap.String("source", r.Source.Name()), zap.Int("count", len(articles)))
	return articles, nil
}

// FullText holt den Volltext eines Artikels über dessen Locator.
func (r *RetrievalAssistant) FullText(article *models.Article) (string, error) {
	return r.Source.FetchFullText(article.Locator)
}
