package models

import (
	"strings"
	"time"
)

// QueryParams beschreibt eine Suchanfrage an die Publikationsquellen.
// Der Wert ist nach der Konstruktion unveränderlich.
type QueryParams struct {
	query      string
	startDate  time.Time
	endDate    time.Time
	maxResults int
}

// NewQueryParams erstellt Suchparameter für ein Zeitfenster.
func NewQueryParams(query string, startDate, endDate time.Time, maxResults int) QueryParams {
	return QueryParams{
		query:      query,
		startDate:  startDate,
		endDate:    endDate,
		maxResults: maxResults,
	}
}

// NewRecentQueryParams erstellt Suchparameter für die letzten Tage bis heute.
func NewRecentQueryParams(query string, days, maxResults int) QueryParams {
	now := time.Now().UTC()
	return NewQueryParams(query, now.AddDate(0, 0, -days), now, maxResults)
}

func (q QueryParams) Query() string        { return q.query }
func (q QueryParams) StartDate() time.Time { return q.startDate }
func (q QueryParams) EndDate() time.Time   { return q.endDate }
func (q QueryParams) MaxResults() int      { return q.maxResults }

// Terms zerlegt die Anfrage in einzelne Suchbegriffe.
func (q QueryParams) Terms() []string {
	return strings.FieldsFunc(q.query, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}
