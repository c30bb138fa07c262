package models

import (
	"time"
)

// Article repräsentiert eine wissenschaftliche Publikation und deren Metadaten.
type Article struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Der Titel identifiziert einen Artikel eindeutig über alle Quellen hinweg.
	Title   string `json:"title" gorm:"uniqueIndex;not null"`
	Summary string `json:"summary,omitempty" gorm:"type:text"`
	URL     string `json:"url,omitempty"`

	// Autoren als kommaseparierte Liste, in der Reihenfolge der Quelle.
	Authors string `json:"authors,omitempty" gorm:"type:text"`
	DOI     string `json:"doi,omitempty"`

	// Locator ist die quellenspezifische Adresse des Volltexts
	// (PDF-URL bei arXiv/bioRxiv, PMCID bei PubMed).
	Locator string `json:"locator,omitempty"`
	Source  string `json:"source,omitempty" gorm:"index"`

	// Veröffentlichungsdatum im Format der jeweiligen Quelle.
	PublishedDate string `json:"published_date,omitempty"`

	FullText string `json:"full_text,omitempty" gorm:"type:text"`

	// Score ist nil solange der Artikel nicht bewertet wurde.
	Score              *int   `json:"score,omitempty"`
	ScoreJustification string `json:"score_justification,omitempty" gorm:"type:text"`

	DescribedInPodcast bool `json:"described_in_podcast"`
}

// RankScore gibt den Score für die Sortierung zurück; unbewertete Artikel
// zählen als -1 und landen damit am Ende der Rangliste.
func (a *Article) RankScore() int {
	if a.Score == nil {
		return -1
	}
	return *a.Score
}
