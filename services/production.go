package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sci-cast/config"
	"sci-cast/models"

	"go.uber.org/zap"
)

// Synthesizer erzeugt eine Audio-Datei aus einem Skript.
type Synthesizer interface {
	Synthesize(ctx context.Context, script, voice, outPath string) (bool, error)
}

// FeedRenderer rendert den Podcast-Feed aus allen Episoden.
type FeedRenderer interface {
	Render(episodes []*models.Episode, now time.Time) (string, error)
}

// ProductionAssistant erzeugt die Audio-Datei einer Folge und das Feed-XML.
type ProductionAssistant struct {
	Config   *config.Config
	TTS      Synthesizer
	Renderer FeedRenderer
	Logger   *zap.Logger
}

// NewProductionAssistant erstellt einen neuen ProductionAssistant.
func NewProductionAssistant(cfg *config.Config, tts Synthesizer, renderer FeedRenderer, logger *zap.Logger) *ProductionAssistant {
	return &ProductionAssistant{Config: cfg, TTS: tts, Renderer: renderer, Logger: logger}
}

// AudioFilename gibt den Bucket-Pfad der Audio-Datei einer Folge zurück,
// gruppiert nach Staffel.
func (p *ProductionAssistant) AudioFilename(season, episodeNumber int) string {
	return fmt.Sprintf("audio/season_%d/episode_%d%s", season, episodeNumber, p.Config.AudioFileType)
}

// ProduceAudio synthetisiert das Skript in eine lokale Audio-Datei.
// completed=false bedeutet: die Synthese ist in die Zeitbegrenzung gelaufen;
// das ist kein Fehler, die Folge kann aber nicht veröffentlicht werden.
func (p *ProductionAssistant) ProduceAudio(ctx context.Context, script, voice string, episodeNumber int) (localPath string, size int64, completed bool, err error) {
	localPath = filepath.Join(os.TempDir(), fmt.Sprintf("episode_%d%s", episodeNumber, p.Config.AudioFileType))

	completed, err = p.TTS.Synthesize(ctx, script, voice, localPath)
	if err != nil {
		return "", 0, false, fmt.Errorf("synthesize episode %d: %w", episodeNumber, err)
	}
	if !completed {
		return localPath, 0, false, nil
	}

	info, err := os.Stat(localPath)
	if err != nil {
		// Größe unbekannt; der Feed trägt dann 0 ein.
		p.Logger.Warn("could not stat audio file", zap.String("path", localPath), zap.Error(err))
		return localPath, 0, true, nil
	}
	p.Logger.Info("produced audio", zap.String("path", localPath), zap.Int64("bytes", info.Size()))
	return localPath, info.Size(), true, nil
}

// RenderFeed baut das Feed-XML aus allen Episoden neu auf.
func (p *ProductionAssistant) RenderFeed(episodes []*models.Episode, now time.Time) (string, error) {
	feedXML, err := p.Renderer.Render(episodes, now)
	if err != nil {
		return "", fmt.Errorf("render feed: %w", err)
	}
	return feedXML, nil
}
