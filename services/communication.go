package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Poster veröffentlicht einen Text auf einer Social-Media-Plattform.
type Poster interface {
	Configured() bool
	Post(ctx context.Context, text, linkURL string) error
}

// CommunicationAssistant kündigt neue Folgen an.
type CommunicationAssistant struct {
	Poster    Poster
	PromoLink string
	Logger    *zap.Logger
}

// NewCommunicationAssistant erstellt einen neuen CommunicationAssistant.
func NewCommunicationAssistant(poster Poster, promoLink string, logger *zap.Logger) *CommunicationAssistant {
	return &CommunicationAssistant{Poster: poster, PromoLink: promoLink, Logger: logger}
}

// Announce veröffentlicht den Ankündigungs-Post mit angehängtem Podcast-Link.
// Ohne hinterlegte Zugangsdaten wird die Ankündigung übersprungen.
func (c *CommunicationAssistant) Announce(ctx context.Context, post string) error {
	if c.Poster == nil || !c.Poster.Configured() {
		c.Logger.Info("no social credentials configured, skipping announcement")
		return nil
	}
	if err := c.Poster.Post(ctx, post, c.PromoLink); err != nil {
		return fmt.Errorf("announce episode: %w", err)
	}
	c.Logger.Info("announced new episode")
	return nil
}
