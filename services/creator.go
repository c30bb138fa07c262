package services

import (
	"context"
	"fmt"
	"strings"

	"sci-cast/config"
	"sci-cast/models"
	"sci-cast/sources"
	"sci-cast/storage"

	"go.uber.org/zap"
)

// PodcastCreator ist der Einstiegspunkt eines Pipeline-Laufs: er prüft die
// Quellen-Konfiguration, baut die Suchparameter und setzt den Director samt
// Assistenten zusammen.
type PodcastCreator struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *storage.ObjectStore
	TextGen TextGenerator
	TTS     Synthesizer
	Poster  Poster
	Render  FeedRenderer
	Prompts *PromptSet
	Voices  []config.VoiceOption
}

// NewPodcastCreator erstellt einen neuen PodcastCreator.
func NewPodcastCreator(cfg *config.Config, logger *zap.Logger, store *storage.ObjectStore,
	textGen TextGenerator, tts Synthesizer, poster Poster, render FeedRenderer,
	prompts *PromptSet, voices []config.VoiceOption) *PodcastCreator {
	return &PodcastCreator{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		TextGen: textGen,
		TTS:     tts,
		Poster:  poster,
		Render:  render,
		Prompts: prompts,
		Voices:  voices,
	}
}

// EnabledSources gibt die Namen der aktivierten Quellen zurück.
func (c *PodcastCreator) EnabledSources() []string {
	var names []string
	for _, name := range strings.Split(c.Config.EnabledSources, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CreatePodcast führt einen vollständigen Pipeline-Lauf aus. Das Suchfenster
// umfasst die konfigurierte Anzahl der letzten Tage bis jetzt.
func (c *PodcastCreator) CreatePodcast(ctx context.Context) (Outcome, error) {
	names := c.EnabledSources()
	if len(names) == 0 {
		return OutcomeFailed, fmt.Errorf("no sources enabled, check ENABLED_SOURCES")
	}

	params := models.NewRecentQueryParams(c.Config.Query, c.Config.QueryDays, c.Config.MaxResults)

	var retrieval []*RetrievalAssistant
	for _, name := range names {
		source, err := sources.New(name, c.Config, c.Logger, params)
		if err != nil {
			return OutcomeFailed, err
		}
		retrieval = append(retrieval, NewRetrievalAssistant(source, c.Logger))
	}

	director := NewDirector(
		NewStorageAssistant(c.Config, c.Store, c.Logger),
		retrieval,
		NewEditorialAssistant(c.TextGen, c.Prompts, c.Voices, c.Logger),
		NewProductionAssistant(c.Config, c.TTS, c.Render, c.Logger),
		NewCommunicationAssistant(c.Poster, c.Config.PromoLink, c.Logger),
		c.Logger,
	)
	return director.Run(ctx)
}
