package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sci-cast/config"
	"sci-cast/models"

	"go.uber.org/zap"
)

// TextGenerator erzeugt Text aus einem System- und einem User-Prompt.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// EditorialAssistant erzeugt alle redaktionellen Inhalte einer Folge:
// Skript, Beschreibung, Titel, Social-Media-Post und die Themen-Bewertung.
type EditorialAssistant struct {
	TextGen TextGenerator
	Prompts *PromptSet
	Voices  []config.VoiceOption
	Logger  *zap.Logger

	rng *rand.Rand
}

// NewEditorialAssistant erstellt einen neuen EditorialAssistant.
func NewEditorialAssistant(textGen TextGenerator, prompts *PromptSet, voices []config.VoiceOption, logger *zap.Logger) *EditorialAssistant {
	return &EditorialAssistant{
		TextGen: textGen,
		Prompts: prompts,
		Voices:  voices,
		Logger:  logger,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// PickVoice wählt zufällig eine Moderator-Persona samt Stimme.
func (e *EditorialAssistant) PickVoice() config.VoiceOption {
	return e.Voices[e.rng.Intn(len(e.Voices))]
}

// GenerateScript erzeugt das Episoden-Skript aus dem Volltext des Artikels.
// Markdown-Auszeichnungen werden entfernt, das Skript geht direkt in die
// Sprachsynthese.
func (e *EditorialAssistant) GenerateScript(ctx context.Context, article *models.Article, persona string) (string, error) {
	system := fmt.Sprintf(e.Prompts.ScriptSystem, persona)
	user := fmt.Sprintf(e.Prompts.ScriptUser, article.FullText)

	script, err := e.TextGen.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}
	return strings.TrimSpace(StripMarkdownEmphasis(script)), nil
}

// GenerateDescription erzeugt die Folgen-Beschreibung aus dem Skript.
func (e *EditorialAssistant) GenerateDescription(ctx context.Context, script string) (string, error) {
	description, err := e.TextGen.Complete(ctx, e.Prompts.DescriptionSystem, fmt.Sprintf(e.Prompts.DescriptionUser, script))
	if err != nil {
		return "", fmt.Errorf("generate description: %w", err)
	}
	return strings.TrimSpace(description), nil
}

// GenerateTitle erzeugt den Folgen-Titel aus dem Skript, ohne Anführungszeichen.
func (e *EditorialAssistant) GenerateTitle(ctx context.Context, script string) (string, error) {
	title, err := e.TextGen.Complete(ctx, e.Prompts.TitleSystem, fmt.Sprintf(e.Prompts.TitleUser, script))
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}
	return strings.TrimSpace(StripQuotes(title)), nil
}

// GeneratePost erzeugt den Ankündigungs-Post aus Titel und Beschreibung.
func (e *EditorialAssistant) GeneratePost(ctx context.Context, title, description string) (string, error) {
	post, err := e.TextGen.Complete(ctx, e.Prompts.PostSystem,
		fmt.Sprintf(e.Prompts.PostUser, title+"\n\n"+description))
	if err != nil {
		return "", fmt.Errorf("generate post: %w", err)
	}
	return strings.TrimSpace(post), nil
}

// ScoreArticle bewertet einen Artikel. Liefert das Modell keine auswertbare
// Markierung, ist das Ergebnis (-1, "") ohne Fehler.
func (e *EditorialAssistant) ScoreArticle(ctx context.Context, article *models.Article) (int, string, error) {
	content := article.Title + "\n\n" + article.FullText
	response, err := e.TextGen.Complete(ctx, e.Prompts.ScoringSystem, fmt.Sprintf(e.Prompts.ScoringUser, content))
	if err != nil {
		return -1, "", fmt.Errorf("score article %q: %w", article.Title, err)
	}

	score, justification := ParseScoreAndJustification(response)
	if score < 0 {
		e.Logger.Warn("model response had no usable score marker", zap.String("title", article.Title))
	}
	return score, justification, nil
}

// PubDate formatiert den Veröffentlichungszeitpunkt im RSS-Format.
func (e *EditorialAssistant) PubDate(t time.Time) string {
	return t.Format("Mon, 2 Jan 2006 15:04:05 -0700")
}

// Citation gibt die Quellenangabe für einen Artikel zurück.
func (e *EditorialAssistant) Citation(article *models.Article) string {
	return article.URL
}
