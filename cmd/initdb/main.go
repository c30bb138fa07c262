// initdb legt eine leere Podcast-Datenbank an und lädt sie in den Bucket,
// falls dort noch keine existiert.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"sci-cast/config"
	"sci-cast/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

func main() {
	log.Println("Initialisiere Podcast-Datenbank...")

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Fehler beim Initialisieren des Loggers: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}

	client, err := storage.NewS3Client(cfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}
	store := storage.NewObjectStore(client, cfg, logging)

	key := cfg.BasePath + cfg.DBFilename
	ctx := context.Background()

	if _, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &cfg.S3Bucket,
		Key:    &key,
	}); err == nil {
		log.Printf("Datenbank existiert bereits unter s3://%s/%s, nichts zu tun.", cfg.S3Bucket, key)
		return
	}

	localPath := filepath.Join(os.TempDir(), cfg.DBFilename)
	defer storage.RemoveLocal(localPath, logging)

	db, err := storage.OpenDatabase(localPath, logging)
	if err != nil {
		log.Fatalf("Fehler beim Anlegen der Datenbank: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Fatalf("Fehler beim Schließen der Datenbank: %v", err)
	}

	if _, err := store.UploadFileNoCache(ctx, key, localPath); err != nil {
		log.Fatalf("Fehler beim Hochladen der Datenbank: %v", err)
	}
	log.Printf("Leere Datenbank nach s3://%s/%s hochgeladen.", cfg.S3Bucket, key)
}
