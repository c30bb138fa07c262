package services

import (
	"context"
	"testing"
	"time"

	"sci-cast/config"
	"sci-cast/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type staticTextGen struct {
	response string
	system   string
	user     string
}

func (s *staticTextGen) Complete(ctx context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return s.response, nil
}

func newTestEditorial(t *testing.T, textGen TextGenerator) *EditorialAssistant {
	t.Helper()
	voices := []config.VoiceOption{
		{Persona: "Alex", Voice: "alloy"},
		{Persona: "Sam", Voice: "onyx"},
	}
	return NewEditorialAssistant(textGen, testPrompts(), voices, zaptest.NewLogger(t))
}

func TestPickVoiceReturnsConfiguredOption(t *testing.T) {
	editorial := newTestEditorial(t, &staticTextGen{})
	for i := 0; i < 20; i++ {
		voice := editorial.PickVoice()
		assert.Contains(t, []string{"Alex", "Sam"}, voice.Persona)
		assert.Contains(t, []string{"alloy", "onyx"}, voice.Voice)
	}
}

func TestGenerateScriptStripsMarkdownAndInsertsPersona(t *testing.T) {
	textGen := &staticTextGen{response: "## Hello *world*, welcome to the show"}
	editorial := newTestEditorial(t, textGen)

	script, err := editorial.GenerateScript(context.Background(),
		&models.Article{Title: "T", FullText: "the text"}, "Sam")
	require.NoError(t, err)
	assert.Equal(t, "Hello world, welcome to the show", script)
	assert.Equal(t, "script Sam", textGen.system)
	assert.Equal(t, "the text", textGen.user)
}

func TestGenerateTitleStripsQuotes(t *testing.T) {
	textGen := &staticTextGen{response: ` "Life's Code" `}
	editorial := newTestEditorial(t, textGen)

	title, err := editorial.GenerateTitle(context.Background(), "script")
	require.NoError(t, err)
	assert.Equal(t, "Lifes Code", title)
}

func TestScoreArticleParsesMarker(t *testing.T) {
	textGen := &staticTextGen{response: "Great fit for audio. TOTAL_SCORE = 8"}
	editorial := newTestEditorial(t, textGen)

	score, justification, err := editorial.ScoreArticle(context.Background(),
		&models.Article{Title: "T", FullText: "text"})
	require.NoError(t, err)
	assert.Equal(t, 8, score)
	assert.Equal(t, "Great fit for audio. ", justification)
}

func TestScoreArticleWithoutMarker(t *testing.T) {
	textGen := &staticTextGen{response: "I refuse to answer in the requested format."}
	editorial := newTestEditorial(t, textGen)

	score, justification, err := editorial.ScoreArticle(context.Background(),
		&models.Article{Title: "T", FullText: "text"})
	require.NoError(t, err)
	assert.Equal(t, -1, score)
	assert.Empty(t, justification)
}

func TestPubDateFormat(t *testing.T) {
	editorial := newTestEditorial(t, &staticTextGen{})
	ts := time.Date(2026, time.March, 4, 6, 30, 0, 0, time.UTC)
	assert.Equal(t, "Wed, 4 Mar 2026 06:30:00 +0000", editorial.PubDate(ts))
}
