package services

import (
	"regexp"
	"strconv"
	"strings"
)

var scoreMarkerRegex = regexp.MustCompile(`TOTAL_SCORE\s*=\s*(\d+)`)

// ParseScoreAndJustification extrahiert die Bewertung aus einer Modell-Antwort.
// Erwartet wird eine Markierung der Form "TOTAL_SCORE = N"; der restliche Text
// ist die Begründung. Fehlt die Markierung, ist das Ergebnis (-1, "").
func ParseScoreAndJustification(response string) (int, string) {
	match := scoreMarkerRegex.FindStringSubmatchIndex(response)
	if match == nil {
		return -1, ""
	}

	score, err := strconv.Atoi(response[match[2]:match[3]])
	if err != nil {
		return -1, ""
	}

	justification := response[:match[0]] + response[match[1]:]
	return score, justification
}

var (
	markdownEmphasisReplacer = strings.NewReplacer("#", "", "*", "")
	quoteReplacer            = strings.NewReplacer(`"`, "", "'", "")
)

// StripMarkdownEmphasis entfernt Markdown-Auszeichnungen, die das
// Sprachmodell trotz Anweisung gelegentlich in Skripte einstreut.
func StripMarkdownEmphasis(s string) string {
	return markdownEmphasisReplacer.Replace(s)
}

// StripQuotes entfernt Anführungszeichen aus generierten Titeln.
func StripQuotes(s string) string {
	return quoteReplacer.Replace(s)
}
