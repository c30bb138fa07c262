// Package arxiv enthält die Logik für die Interaktion mit der arXiv Atom-API.
package arxiv

import (
	"encoding/xml"
)

// Feed repräsentiert die Atom-Antwort der arXiv-API.
type Feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []Entry  `xml:"entry"`
}

// Entry repräsentiert einen einzelnen Treffer im Atom-Feed.
type Entry struct {
	ID        string   `xml:"id"`
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []Author `xml:"author"`
	DOI       string   `xml:"doi"`
	Links     []Link   `xml:"link"`
}

// Author repräsentiert einen Autor eines Entries.
type Author struct {
	Name string `xml:"name"`
}

// Link repräsentiert einen Link innerhalb eines Entries.
type Link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// PDFLink gibt den Link auf das PDF des Entries zurück, oder "".
func (e *Entry) PDFLink() string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	return ""
}
