package models

import (
	"time"
)

// Episode repräsentiert eine veröffentlichte Podcast-Folge.
type Episode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GUID string `json:"guid" gorm:"uniqueIndex;not null"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty" gorm:"type:text"`
	Script      string `json:"script,omitempty" gorm:"type:text"`

	AudioURL string `json:"audio_url"`
	FileSize int64  `json:"file_size"`

	// PubDate im RSS-Format, z.B. "Mon, 2 Jan 2006 15:04:05 +0000".
	PubDate string `json:"pub_date"`

	// EpisodeNumber steigt global streng monoton, unabhängig von der Staffel.
	EpisodeNumber int `json:"episode_number" gorm:"index"`
	// SeasonNumber ist das Jahr der Veröffentlichung.
	SeasonNumber int `json:"season_number"`
	// EpisodeType ist der iTunes-Folgentyp, z.B. "full".
	EpisodeType string `json:"episode_type,omitempty"`

	// Moderator und TTS-Stimme dieser Folge.
	Persona string `json:"persona,omitempty"`
	Voice   string `json:"voice,omitempty"`

	// Der veröffentlichte Ankündigungs-Post.
	PostText string `json:"post_text,omitempty" gorm:"type:text"`

	// Titel der in der Folge besprochenen Artikel, zeilensepariert.
	DiscussedArticles string `json:"discussed_articles,omitempty" gorm:"type:text"`

	// Quellenangabe der besprochenen Publikation.
	Citation string `json:"citation,omitempty"`
}
