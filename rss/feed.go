// Package rss rendert den Podcast-Feed aus den gespeicherten Episoden.
package rss

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sci-cast/config"
	"sci-cast/models"

	"github.com/eduncan911/podcast"
	"go.uber.org/zap"
)

// Renderer baut bei jedem Aufruf den vollständigen Feed neu auf.
type Renderer struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewRenderer erstellt einen neuen Feed-Renderer.
func NewRenderer(cfg *config.Config, logger *zap.Logger) *Renderer {
	return &Renderer{Config: cfg, Logger: logger}
}

// Render erzeugt das Feed-XML aus allen Episoden. Die Reihenfolge der
// übergebenen Episoden bleibt erhalten; der Aufrufer liefert sie neueste zuerst.
func (r *Renderer) Render(episodes []*models.Episode, now time.Time) (string, error) {
	feed := podcast.New(
		r.Config.PodcastTitle,
		r.Config.PodcastLink,
		r.Config.PodcastDescription,
		nil, &now,
	)
	feed.Language = r.Config.PodcastLanguage
	feed.Copyright = r.Config.PodcastCopyright
	feed.AddAuthor(r.Config.PodcastAuthor, "")
	feed.AddCategory(r.Config.PodcastCategory, nil)
	if r.Config.LogoFilename != "" {
		feed.AddImage(r.Config.PublicBaseURL + r.Config.LogoFilename)
	}

	for _, episode := range episodes {
		item := podcast.Item{
			Title:       episode.Title,
			Description: episode.Description,
			GUID:        episode.GUID,
			IOrder:      strconv.Itoa(episode.EpisodeNumber),
		}
		if t, err := parsePubDate(episode.PubDate); err == nil {
			item.AddPubDate(&t)
		} else {
			r.Logger.Warn("unparseable episode pub date",
				zap.String("guid", episode.GUID), zap.String("pub_date", episode.PubDate))
		}
		item.AddEnclosure(episode.AudioURL, enclosureType(r.Config.AudioFileType), episode.FileSize)

		if _, err := feed.AddItem(item); err != nil {
			return "", fmt.Errorf("add episode %q to feed: %w", episode.GUID, err)
		}
	}

	return feed.String(), nil
}

// parsePubDate akzeptiert die gängigen RSS-Datumsschreibweisen.
func parsePubDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, "Mon, 2 Jan 2006 15:04:05 -0700"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable pub date %q", value)
}

// enclosureType leitet den MIME-Typ aus der Dateiendung ab. Für Endungen
// ohne passenden iTunes-Typ rendert die Bibliothek application/octet-stream.
func enclosureType(fileType string) podcast.EnclosureType {
	switch strings.ToLower(strings.TrimPrefix(fileType, ".")) {
	case "mp3":
		return podcast.MP3
	case "m4a":
		return podcast.M4A
	case "m4v":
		return podcast.M4V
	case "mp4":
		return podcast.MP4
	default:
		return podcast.EnclosureType(-1)
	}
}
