// Package biorxiv enthält die Logik für die Interaktion mit der bioRxiv Details-API.
package biorxiv

// DetailsResponse repräsentiert die JSON-Antwort der Details-API.
type DetailsResponse struct {
	Messages   []Message `json:"messages"`
	Collection []Record  `json:"collection"`
}

// Message enthält Status und Paginierungs-Informationen einer Antwortseite.
type Message struct {
	Status string `json:"status"`
	Cursor any    `json:"cursor"`
	Count  int    `json:"count"`
	Total  string `json:"total"`
}

// Record repräsentiert ein einzelnes Preprint in der Collection.
type Record struct {
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Version  string `json:"version"`
	Abstract string `json:"abstract"`
	Server   string `json:"server"`
}
