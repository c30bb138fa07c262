// Package pubmed enthält die Logik für die Interaktion mit der PubMed/PMC API.
package pubmed

import (
	"encoding/xml"
	"strings"
)

// ESearchResponse repräsentiert die JSON-Antwort von ESearch für die ID-Suche.
type ESearchResponse struct {
	ESearchResult struct {
		IdList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// ArticleSet repräsentiert das XML-Dokument von EFetch (db=pmc).
type ArticleSet struct {
	XMLName  xml.Name  `xml:"pmc-articleset"`
	Articles []Article `xml:"article"`
}

// Article repräsentiert einen einzelnen PMC-Artikel in der XML-Antwort.
type Article struct {
	Front struct {
		ArticleMeta struct {
			IDs []struct {
				Type  string `xml:"pub-id-type,attr"`
				Value string `xml:",chardata"`
			} `xml:"article-id"`
			Title    string `xml:"title-group>article-title"`
			Abstract string `xml:"abstract"`
			Contribs []struct {
				Surname    string `xml:"surname"`
				GivenNames string `xml:"given-names"`
			} `xml:"contrib-group>contrib>name"`
			PubDates []struct {
				Type  string `xml:"pub-type,attr"`
				Year  string `xml:"year"`
				Month string `xml:"month"`
				Day   string `xml:"day"`
			} `xml:"pub-date"`
		} `xml:"article-meta"`
	} `xml:"front"`
	Body Body `xml:"body"`
}

// Body repräsentiert den Volltext-Körper eines PMC-Artikels.
type Body struct {
	Paragraphs []string `xml:"p"`
	Sections   []Sec    `xml:"sec"`
}

// Sec ist ein (möglicherweise verschachtelter) Abschnitt im Artikel-Körper.
type Sec struct {
	Title      string   `xml:"title"`
	Paragraphs []string `xml:"p"`
	Sections   []Sec    `xml:"sec"`
}

// PMCID gibt die PMCID des Artikels zurück (mit "PMC"-Präfix), oder "".
func (a *Article) PMCID() string {
	for _, id := range a.Front.ArticleMeta.IDs {
		if id.Type == "pmc" {
			value := strings.TrimSpace(id.Value)
			if value != "" && !strings.HasPrefix(value, "PMC") {
				value = "PMC" + value
			}
			return value
		}
	}
	return ""
}

// DOI gibt die DOI des Artikels zurück, oder "".
func (a *Article) DOI() string {
	for _, id := range a.Front.ArticleMeta.IDs {
		if id.Type == "doi" {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

// Authors gibt die Autoren als kommaseparierte Liste zurück.
func (a *Article) Authors() string {
	var names []string
	for _, contrib := range a.Front.ArticleMeta.Contribs {
		name := strings.TrimSpace(strings.TrimSpace(contrib.GivenNames) + " " + strings.TrimSpace(contrib.Surname))
		if name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// Text sammelt alle Absätze des Körpers in Dokumentreihenfolge ein.
func (b *Body) Text() string {
	var parts []string
	for _, p := range b.Paragraphs {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	for i := range b.Sections {
		collectSec(&b.Sections[i], &parts)
	}
	return strings.Join(parts, "\n\n")
}

func collectSec(sec *Sec, parts *[]string) {
	if s := strings.TrimSpace(sec.Title); s != "" {
		*parts = append(*parts, s)
	}
	for _, p := range sec.Paragraphs {
		if s := strings.TrimSpace(p); s != "" {
			*parts = append(*parts, s)
		}
	}
	for i := range sec.Sections {
		collectSec(&sec.Sections[i], parts)
	}
}
