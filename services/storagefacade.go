package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sci-cast/config"
	"sci-cast/models"
	"sci-cast/storage"

	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Store ist die Speicher-Schnittstelle des Directors.
type Store interface {
	Prepare(ctx context.Context) error
	Cleanup()

	ArticleDescribed(title string) (bool, error)
	FullText(title string) (string, error)
	ScoreAndJustification(title string) (int, string, error)
	UpsertArticles(articles []*models.Article) error
	MarkDescribed(title string) error

	NextEpisodeNumber() (int, error)
	InsertEpisode(episode *models.Episode) error
	AllEpisodes() ([]*models.Episode, error)

	UploadAudio(ctx context.Context, localPath, filename string) (string, error)
	UploadFeed(ctx context.Context, feedXML string) error
	PersistDatabase(ctx context.Context) error
}

// StorageAssistant verwaltet die Arbeitskopie der Datenbank und alle
// Bucket-Artefakte (Datenbank, Feed, Audio-Dateien).
type StorageAssistant struct {
	Config *config.Config
	Store  *storage.ObjectStore
	Logger *zap.Logger

	db        *storage.Database
	localPath string
}

// NewStorageAssistant erstellt einen neuen StorageAssistant.
func NewStorageAssistant(cfg *config.Config, store *storage.ObjectStore, logger *zap.Logger) *StorageAssistant {
	return &StorageAssistant{
		Config:    cfg,
		Store:     store,
		Logger:    logger,
		localPath: filepath.Join(os.TempDir(), cfg.DBFilename),
	}
}

func (s *StorageAssistant) dbKey() string {
	return s.Config.BasePath + s.Config.DBFilename
}

// Prepare lädt die Datenbank aus dem Bucket und öffnet die lokale Kopie.
// Existiert im Bucket noch keine Datenbank, wird eine leere angelegt.
func (s *StorageAssistant) Prepare(ctx context.Context) error {
	err := s.Store.DownloadFile(ctx, s.dbKey(), s.localPath)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
			s.Logger.Warn("no database in bucket, starting with an empty one", zap.String("key", s.dbKey()))
		} else {
			return fmt.Errorf("download database: %w", err)
		}
	}

	db, err := storage.OpenDatabase(s.localPath, s.Logger)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Cleanup schließt die Datenbank und entfernt die lokale Arbeitskopie.
// Läuft auch auf Fehlerpfaden.
func (s *StorageAssistant) Cleanup() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.Logger.Warn("could not close database", zap.Error(err))
		}
		s.db = nil
	}
	storage.RemoveLocal(s.localPath, s.Logger)
}

// DB gibt die geöffnete Datenbank zurück; nur zwischen Prepare und Cleanup gültig.
func (s *StorageAssistant) DB() *storage.Database {
	return s.db
}

func (s *StorageAssistant) ArticleDescribed(title string) (bool, error) {
	return s.db.ArticleDescribed(title)
}

func (s *StorageAssistant) FullText(title string) (string, error) {
	return s.db.FullText(title)
}

func (s *StorageAssistant) ScoreAndJustification(title string) (int, string, error) {
	return s.db.ScoreAndJustification(title)
}

func (s *StorageAssistant) UpsertArticles(articles []*models.Article) error {
	return s.db.UpsertArticles(articles)
}

func (s *StorageAssistant) MarkDescribed(title string) error {
	return s.db.MarkDescribed(title)
}

func (s *StorageAssistant) NextEpisodeNumber() (int, error) {
	return s.db.NextEpisodeNumber()
}

func (s *StorageAssistant) InsertEpisode(episode *models.Episode) error {
	return s.db.InsertEpisode(episode)
}

func (s *StorageAssistant) AllEpisodes() ([]*models.Episode, error) {
	return s.db.AllEpisodes()
}

// UploadAudio lädt die Audio-Datei hoch und gibt ihre öffentliche URL zurück.
func (s *StorageAssistant) UploadAudio(ctx context.Context, localPath, filename string) (string, error) {
	if _, err := s.Store.UploadFile(ctx, s.Config.BasePath+filename, localPath); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	return s.Config.PublicBaseURL + filename, nil
}

// UploadFeed lädt das Feed-XML hoch, ungecacht.
func (s *StorageAssistant) UploadFeed(ctx context.Context, feedXML string) error {
	if _, err := s.Store.UploadString(ctx, s.Config.BasePath+s.Config.RSSFilename, feedXML); err != nil {
		return fmt.Errorf("upload feed: %w", err)
	}
	return nil
}

// PersistDatabase lädt die lokale Datenbank-Kopie zurück in den Bucket.
func (s *StorageAssistant) PersistDatabase(ctx context.Context) error {
	if _, err := s.Store.UploadFileNoCache(ctx, s.dbKey(), s.localPath); err != nil {
		return fmt.Errorf("upload database: %w", err)
	}
	return nil
}
