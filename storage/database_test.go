package storage

import (
	"path/filepath"
	"testing"

	"sci-cast/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func intPtr(v int) *int { return &v }

func TestNextEpisodeNumber(t *testing.T) {
	db := newTestDatabase(t)

	number, err := db.NextEpisodeNumber()
	require.NoError(t, err)
	assert.Equal(t, 1, number, "empty database starts at 1")

	require.NoError(t, db.InsertEpisode(&models.Episode{GUID: "g-41", EpisodeNumber: 41}))

	number, err = db.NextEpisodeNumber()
	require.NoError(t, err)
	assert.Equal(t, 42, number)
}

func TestDescribedFlagLifecycle(t *testing.T) {
	db := newTestDatabase(t)

	described, err := db.ArticleDescribed("Unknown title")
	require.NoError(t, err)
	assert.False(t, described, "unknown articles count as not described")

	require.NoError(t, db.UpsertArticles([]*models.Article{{Title: "Known"}}))

	described, err = db.ArticleDescribed("Known")
	require.NoError(t, err)
	assert.False(t, described)

	require.NoError(t, db.MarkDescribed("Known"))

	described, err = db.ArticleDescribed("Known")
	require.NoError(t, err)
	assert.True(t, described)

	// Ein erneuter Upsert desselben Titels setzt das Flag nicht zurück.
	require.NoError(t, db.UpsertArticles([]*models.Article{{Title: "Known", Summary: "updated"}}))
	described, err = db.ArticleDescribed("Known")
	require.NoError(t, err)
	assert.True(t, described)
}

func TestMarkDescribedUnknownArticle(t *testing.T) {
	db := newTestDatabase(t)
	assert.Error(t, db.MarkDescribed("Never seen"))
}

func TestUpsertArticlesKeyedByTitle(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.UpsertArticles([]*models.Article{
		{Title: "Paper A", Summary: "first version", Source: "arxiv"},
	}))
	require.NoError(t, db.UpsertArticles([]*models.Article{
		{Title: "Paper A", Summary: "second version", Source: "arxiv", FullText: "text",
			Authors: "Ada Lovelace", DOI: "10.1000/a"},
	}))

	articles, err := db.Articles()
	require.NoError(t, err)
	require.Len(t, articles, 1, "same title must not create a duplicate")
	assert.Equal(t, "second version", articles[0].Summary)
	assert.Equal(t, "text", articles[0].FullText)
	assert.Equal(t, "Ada Lovelace", articles[0].Authors)
	assert.Equal(t, "10.1000/a", articles[0].DOI)
}

func TestFullTextCache(t *testing.T) {
	db := newTestDatabase(t)

	text, err := db.FullText("Missing")
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, db.UpsertArticles([]*models.Article{{Title: "Stored", FullText: "cached text"}}))

	text, err = db.FullText("Stored")
	require.NoError(t, err)
	assert.Equal(t, "cached text", text)
}

func TestScoreAndJustificationSentinel(t *testing.T) {
	db := newTestDatabase(t)

	score, justification, err := db.ScoreAndJustification("Missing")
	require.NoError(t, err)
	assert.Equal(t, -1, score)
	assert.Empty(t, justification)

	require.NoError(t, db.UpsertArticles([]*models.Article{{Title: "Unscored"}}))
	score, _, err = db.ScoreAndJustification("Unscored")
	require.NoError(t, err)
	assert.Equal(t, -1, score, "stored article without score keeps the sentinel")

	require.NoError(t, db.UpsertArticles([]*models.Article{
		{Title: "Scored", Score: intPtr(9), ScoreJustification: "solid work"},
	}))
	score, justification, err = db.ScoreAndJustification("Scored")
	require.NoError(t, err)
	assert.Equal(t, 9, score)
	assert.Equal(t, "solid work", justification)
}

func TestAllEpisodesNewestFirst(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertEpisode(&models.Episode{GUID: "g-1", EpisodeNumber: 1}))
	require.NoError(t, db.InsertEpisode(&models.Episode{GUID: "g-3", EpisodeNumber: 3}))
	require.NoError(t, db.InsertEpisode(&models.Episode{GUID: "g-2", EpisodeNumber: 2}))

	episodes, err := db.AllEpisodes()
	require.NoError(t, err)
	require.Len(t, episodes, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{
		episodes[0].EpisodeNumber, episodes[1].EpisodeNumber, episodes[2].EpisodeNumber,
	})
}

func TestInsertEpisodeDuplicateGUID(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.InsertEpisode(&models.Episode{GUID: "dup", EpisodeNumber: 1}))
	assert.Error(t, db.InsertEpisode(&models.Episode{GUID: "dup", EpisodeNumber: 2}))
}
