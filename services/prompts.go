package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PromptSet enthält die Vorlagen für alle Modell-Aufrufe. User-Vorlagen sind
// fmt-Formatstrings mit einem %s-Platzhalter für den jeweiligen Inhalt.
type PromptSet struct {
	ScriptSystem string
	ScriptUser   string

	DescriptionSystem string
	DescriptionUser   string

	TitleSystem string
	TitleUser   string

	PostSystem string
	PostUser   string

	ScoringSystem string
	ScoringUser   string
}

// Eingebaute Vorlagen; Dateien im Prompt-Verzeichnis überschreiben sie einzeln.
var defaultPrompts = map[string]string{
	"script_system.txt": "You are %s, the host of a science podcast. Write a complete, engaging " +
		"episode script presenting the following publication to a general audience. " +
		"Plain spoken text only, no markdown, no stage directions.",
	"script_user.txt": "Publication full text:\n\n%s",
	"description_system.txt": "You write concise podcast episode descriptions. " +
		"Summarize the episode script you are given in at most two paragraphs.",
	"description_user.txt": "Episode script:\n\n%s",
	"title_system.txt": "You write short, catchy podcast episode titles. " +
		"Answer with the title only, without quotation marks.",
	"title_user.txt": "Episode script:\n\n%s",
	"post_system.txt": "You write short social media posts announcing new podcast episodes. " +
		"Stay under 250 characters.",
	"post_user.txt": "Episode title and description:\n\n%s",
	"scoring_system.txt": "You rate scientific publications for their suitability as a podcast topic " +
		"on a scale from 0 to 10. Explain your reasoning, then end with a line " +
		"of the form TOTAL_SCORE = N.",
	"scoring_user.txt": "Publication:\n\n%s",
}

// LoadPrompts liest die Prompt-Vorlagen aus dem Verzeichnis. Fehlende Dateien
// fallen auf die eingebauten Vorlagen zurück.
func LoadPrompts(dir string) (*PromptSet, error) {
	load := func(name string) (string, error) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return defaultPrompts[name], nil
		}
		if err != nil {
			return "", fmt.Errorf("read prompt %q: %w", name, err)
		}
		return string(data), nil
	}

	var set PromptSet
	var err error
	fields := []struct {
		dst  *string
		name string
	}{
		{&set.ScriptSystem, "script_system.txt"},
		{&set.ScriptUser, "script_user.txt"},
		{&set.DescriptionSystem, "description_system.txt"},
		{&set.DescriptionUser, "description_user.txt"},
		{&set.TitleSystem, "title_system.txt"},
		{&set.TitleUser, "title_user.txt"},
		{&set.PostSystem, "post_system.txt"},
		{&set.PostUser, "post_user.txt"},
		{&set.ScoringSystem, "scoring_system.txt"},
		{&set.ScoringUser, "scoring_user.txt"},
	}
	for _, f := range fields {
		if *f.dst, err = load(f.name); err != nil {
			return nil, err
		}
	}
	return &set, nil
}
