package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sci-cast/models"
	"sci-cast/storage"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Ab dieser Bewertung wird ein Artikel zur Folge.
const minPublishScore = 9

var episodesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "podcast_episodes_generated_total",
	Help: "Anzahl der insgesamt veröffentlichten Podcast-Folgen.",
})

func init() {
	prometheus.MustRegister(episodesGenerated)
}

// Outcome beschreibt, wie ein Pipeline-Lauf geendet hat.
type Outcome int

const (
	// OutcomePublished: eine neue Folge wurde veröffentlicht.
	OutcomePublished Outcome = iota
	// OutcomeNoNewContent: alle gefundenen Artikel waren schon besprochen.
	OutcomeNoNewContent
	// OutcomeNoFullText: für keinen Kandidaten war ein Volltext beschaffbar.
	OutcomeNoFullText
	// OutcomeBelowThreshold: kein Kandidat erreichte die Mindest-Bewertung.
	OutcomeBelowThreshold
	// OutcomeNotCompleted: die Audio-Synthese lief in die Zeitbegrenzung;
	// es wurde nichts veröffentlicht.
	OutcomeNotCompleted
	// OutcomeFailed: der Lauf ist abgebrochen.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeNoNewContent:
		return "no_new_content"
	case OutcomeNoFullText:
		return "no_full_text"
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomeNotCompleted:
		return "not_completed"
	default:
		return "failed"
	}
}

// Director führt die Episoden-Pipeline aus: Artikel besorgen, filtern,
// bewerten, die beste Publikation zur Folge ausarbeiten und veröffentlichen.
type Director struct {
	Storage       Store
	Retrieval     []*RetrievalAssistant
	Editorial     *EditorialAssistant
	Production    *ProductionAssistant
	Communication *CommunicationAssistant
	Logger        *zap.Logger
}

// NewDirector erstellt einen neuen Director.
func NewDirector(store Store, retrieval []*RetrievalAssistant, editorial *EditorialAssistant,
	production *ProductionAssistant, communication *CommunicationAssistant, logger *zap.Logger) *Director {
	return &Director{
		Storage:       store,
		Retrieval:     retrieval,
		Editorial:     editorial,
		Production:    production,
		Communication: communication,
		Logger:        logger,
	}
}

// Run führt einen vollständigen Pipeline-Lauf aus. Die lokale
// Datenbank-Kopie wird in jedem Fall wieder aufgeräumt.
func (d *Director) Run(ctx context.Context) (Outcome, error) {
	log := d.Logger
	log.Info("starting episode pipeline")

	if err := d.Storage.Prepare(ctx); err != nil {
		return OutcomeFailed, err
	}
	defer d.Storage.Cleanup()

	fetched, bySource, err := d.fetchAll()
	if err != nil {
		return OutcomeFailed, err
	}

	candidates, err := d.filterDescribed(fetched)
	if err != nil {
		return OutcomeFailed, err
	}
	if len(candidates) == 0 {
		log.Info("no new articles, nothing to do")
		return OutcomeNoNewContent, nil
	}

	withText, err := d.attachFullTexts(candidates, bySource)
	if err != nil {
		return OutcomeFailed, err
	}
	if len(withText) == 0 {
		log.Info("no candidate with full text, nothing to do")
		return OutcomeNoFullText, nil
	}

	if err := d.attachScores(ctx, withText); err != nil {
		return OutcomeFailed, err
	}

	ranked := rankArticles(withText)
	d.logScoreStats(ranked)

	winner := ranked[0]
	if winner.RankScore() < minPublishScore {
		log.Info("best candidate below publishing threshold",
			zap.String("title", winner.Title), zap.Int("score", winner.RankScore()))
		return OutcomeBelowThreshold, nil
	}

	return d.publish(ctx, winner, ranked)
}

// fetchAll holt Artikel aus allen Quellen. Der Ausfall einer Quelle bricht
// den Lauf ab.
func (d *Director) fetchAll() ([]*models.Article, map[string]*RetrievalAssistant, error) {
	var fetched []*models.Article
	bySource := make(map[string]*RetrievalAssistant, len(d.Retrieval))
	for _, assistant := range d.Retrieval {
		bySource[assistant.Name()] = assistant
		articles, err := assistant.FetchArticles()
		if err != nil {
			return nil, nil, err
		}
		fetched = append(fetched, articles...)
	}
	return fetched, bySource, nil
}

// filterDescribed entfernt Duplikate und bereits besprochene Artikel.
func (d *Director) filterDescribed(fetched []*models.Article) ([]*models.Article, error) {
	seen := make(map[string]bool, len(fetched))
	var candidates []*models.Article
	for _, article := range fetched {
		if article.Title == "" || seen[article.Title] {
			continue
		}
		seen[article.Title] = true

		described, err := d.Storage.ArticleDescribed(article.Title)
		if err != nil {
			return nil, err
		}
		if described {
			continue
		}
		candidates = append(candidates, article)
	}
	return candidates, nil
}

// attachFullTexts besorgt für jeden Kandidaten den Volltext, erst aus der
// Datenbank, sonst von der Quelle. Kandidaten ohne Volltext fallen raus.
func (d *Director) attachFullTexts(candidates []*models.Article, bySource map[string]*RetrievalAssistant) ([]*models.Article, error) {
	var withText []*models.Article
	for _, article := range candidates {
		text, err := d.Storage.FullText(article.Title)
		if err != nil {
			return nil, err
		}
		if text == "" {
			assistant, ok := bySource[article.Source]
			if !ok {
				d.Logger.Warn("article from unknown source, skipping",
					zap.String("title", article.Title), zap.String("source", article.Source))
				continue
			}
			text, err = assistant.FullText(article)
			if err != nil || text == "" {
				d.Logger.Warn("no full text, skipping article",
					zap.String("title", article.Title), zap.Error(err))
				continue
			}
		}
		article.FullText = text
		withText = append(withText, article)
	}
	return withText, nil
}

// attachScores bewertet jeden Kandidaten, erst aus der Datenbank, sonst über
// das Modell. Ein fehlgeschlagenes Scoring bricht den Lauf ab.
func (d *Director) attachScores(ctx context.Context, articles []*models.Article) error {
	for _, article := range articles {
		score, justification, err := d.Storage.ScoreAndJustification(article.Title)
		if err != nil {
			return err
		}
		if score < 0 {
			score, justification, err = d.Editorial.ScoreArticle(ctx, article)
			if err != nil {
				return err
			}
		}
		if score >= 0 {
			s := score
			article.Score = &s
			article.ScoreJustification = justification
		}
	}
	return nil
}

// publish arbeitet den Sieger-Artikel zur Folge aus und veröffentlicht sie.
func (d *Director) publish(ctx context.Context, winner *models.Article, ranked []*models.Article) (Outcome, error) {
	log := d.Logger

	voice := d.Editorial.PickVoice()
	log.Info("producing episode", zap.String("title", winner.Title),
		zap.Int("score", winner.RankScore()), zap.String("persona", voice.Persona))

	script, err := d.Editorial.GenerateScript(ctx, winner, voice.Persona)
	if err != nil {
		return OutcomeFailed, err
	}
	if script == "" {
		return OutcomeFailed, fmt.Errorf("empty script for %q", winner.Title)
	}

	description, err := d.Editorial.GenerateDescription(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}
	title, err := d.Editorial.GenerateTitle(ctx, script)
	if err != nil {
		return OutcomeFailed, err
	}

	post, err := d.Editorial.GeneratePost(ctx, title, description)
	if err != nil {
		return OutcomeFailed, err
	}

	number, err := d.Storage.NextEpisodeNumber()
	if err != nil {
		return OutcomeFailed, err
	}

	audioPath, size, completed, err := d.Production.ProduceAudio(ctx, script, voice.Voice, number)
	if err != nil {
		return OutcomeFailed, err
	}
	if audioPath != "" {
		defer storage.RemoveLocal(audioPath, log)
	}
	if !completed {
		log.Warn("audio synthesis timed out, no episode published")
		return OutcomeNotCompleted, nil
	}

	now := time.Now().UTC()
	season := now.Year()
	audioURL, err := d.Storage.UploadAudio(ctx, audioPath, d.Production.AudioFilename(season, number))
	if err != nil {
		return OutcomeFailed, err
	}

	episode := &models.Episode{
		GUID:              uuid.NewString(),
		Title:             title,
		Description:       description,
		Script:            script,
		AudioURL:          audioURL,
		FileSize:          size,
		PubDate:           d.Editorial.PubDate(now),
		EpisodeNumber:     number,
		SeasonNumber:      season,
		EpisodeType:       "full",
		Persona:           voice.Persona,
		Voice:             voice.Voice,
		PostText:          post,
		DiscussedArticles: winner.Title,
		Citation:          d.Editorial.Citation(winner),
	}
	if err := d.Storage.InsertEpisode(episode); err != nil {
		return OutcomeFailed, err
	}

	if err := d.Storage.UpsertArticles(ranked); err != nil {
		return OutcomeFailed, err
	}
	if err := d.Storage.MarkDescribed(winner.Title); err != nil {
		return OutcomeFailed, err
	}

	episodes, err := d.Storage.AllEpisodes()
	if err != nil {
		return OutcomeFailed, err
	}
	feedXML, err := d.Production.RenderFeed(episodes, now)
	if err != nil {
		return OutcomeFailed, err
	}
	if err := d.Storage.UploadFeed(ctx, feedXML); err != nil {
		return OutcomeFailed, err
	}
	if err := d.Storage.PersistDatabase(ctx); err != nil {
		return OutcomeFailed, err
	}

	// Die Folge ist zu diesem Zeitpunkt bereits veröffentlicht; ein Fehler
	// hier hinterlässt einen inkonsistenten, aber behebbaren Zustand.
	if post != "" {
		if err := d.Communication.Announce(ctx, post); err != nil {
			return OutcomeFailed, fmt.Errorf("episode %d published but not announced: %w", number, err)
		}
	}

	episodesGenerated.Inc()
	log.Info("published episode",
		zap.Int("episode", number), zap.Int("season", episode.SeasonNumber), zap.String("title", title))
	return OutcomePublished, nil
}

// rankArticles sortiert stabil nach Bewertung absteigend; unbewertete
// Artikel (Score -1) landen am Ende.
func rankArticles(articles []*models.Article) []*models.Article {
	ranked := make([]*models.Article, len(articles))
	copy(ranked, articles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankScore() > ranked[j].RankScore()
	})
	return ranked
}

// logScoreStats protokolliert Mittelwert, Minimum und Maximum der Bewertungen.
func (d *Director) logScoreStats(articles []*models.Article) {
	var sum, count int
	min, max := -1, -1
	for _, article := range articles {
		if article.Score == nil {
			continue
		}
		s := *article.Score
		sum += s
		count++
		if min == -1 || s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if count == 0 {
		d.Logger.Info("score statistics", zap.Int("scored", 0), zap.Int("unscored", len(articles)))
		return
	}
	d.Logger.Info("score statistics",
		zap.Int("scored", count),
		zap.Int("unscored", len(articles)-count),
		zap.Float64("mean", float64(sum)/float64(count)),
		zap.Int("min", min),
		zap.Int("max", max))
}
