package storage

import (
	"errors"
	"fmt"

	"sci-cast/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Database kapselt alle Zugriffe auf die lokale SQLite-Datei.
type Database struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenDatabase öffnet die SQLite-Datei und legt fehlende Tabellen an.
func OpenDatabase(path string, logger *zap.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	if err := db.AutoMigrate(&models.Article{}, &models.Episode{}); err != nil {
		return nil, fmt.Errorf("migrate database %q: %w", path, err)
	}

	return &Database{db: db, logger: logger}, nil
}

// Close schließt die Datenbank-Verbindung.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ArticleDescribed meldet, ob ein Artikel bereits in einer Folge besprochen wurde.
func (d *Database) ArticleDescribed(title string) (bool, error) {
	var article models.Article
	err := d.db.Select("described_in_podcast").Where("title = ?", title).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query described flag for %q: %w", title, err)
	}
	return article.DescribedInPodcast, nil
}

// MarkDescribed setzt das Besprochen-Flag eines Artikels. Das Flag wird nie
// wieder zurückgesetzt.
func (d *Database) MarkDescribed(title string) error {
	result := d.db.Model(&models.Article{}).
		Where("title = ?", title).
		Update("described_in_podcast", true)
	if result.Error != nil {
		return fmt.Errorf("mark %q described: %w", title, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mark %q described: no such article", title)
	}
	return nil
}

// UpsertArticles speichert Artikel; der Titel ist der Konfliktschlüssel.
// Das Besprochen-Flag wird bei einem Konflikt nicht überschrieben.
func (d *Database) UpsertArticles(articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	err := d.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "summary", "url", "authors", "doi", "locator",
			"source", "published_date", "full_text", "score", "score_justification",
		}),
	}).Create(articles).Error
	if err != nil {
		return fmt.Errorf("upsert %d articles: %w", len(articles), err)
	}
	return nil
}

// FullText gibt den gespeicherten Volltext eines Artikels zurück, oder "".
func (d *Database) FullText(title string) (string, error) {
	var article models.Article
	err := d.db.Select("full_text").Where("title = ?", title).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query full text for %q: %w", title, err)
	}
	return article.FullText, nil
}

// ScoreAndJustification gibt die gespeicherte Bewertung eines Artikels zurück.
// Ohne gespeicherte Bewertung ist der Score -1.
func (d *Database) ScoreAndJustification(title string) (int, string, error) {
	var article models.Article
	err := d.db.Select("score", "score_justification").Where("title = ?", title).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return -1, "", nil
	}
	if err != nil {
		return -1, "", fmt.Errorf("query score for %q: %w", title, err)
	}
	if article.Score == nil {
		return -1, "", nil
	}
	return *article.Score, article.ScoreJustification, nil
}

// NextEpisodeNumber gibt die nächste freie, global fortlaufende Folgennummer
// zurück. Für eine leere Datenbank ist das 1.
func (d *Database) NextEpisodeNumber() (int, error) {
	var maxNumber *int
	err := d.db.Model(&models.Episode{}).Select("MAX(episode_number)").Scan(&maxNumber).Error
	if err != nil {
		return 0, fmt.Errorf("query max episode number: %w", err)
	}
	if maxNumber == nil {
		return 1, nil
	}
	return *maxNumber + 1, nil
}

// InsertEpisode speichert eine neue Folge.
func (d *Database) InsertEpisode(episode *models.Episode) error {
	if err := d.db.Create(episode).Error; err != nil {
		return fmt.Errorf("insert episode %q: %w", episode.GUID, err)
	}
	return nil
}

// AllEpisodes gibt alle Folgen zurück, neueste (höchste Folgennummer) zuerst.
func (d *Database) AllEpisodes() ([]*models.Episode, error) {
	var episodes []*models.Episode
	if err := d.db.Order("episode_number DESC").Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	return episodes, nil
}

// Articles gibt alle Artikel zurück, zuletzt aktualisierte zuerst.
func (d *Database) Articles() ([]*models.Article, error) {
	var articles []*models.Article
	if err := d.db.Order("updated_at DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	return articles, nil
}
