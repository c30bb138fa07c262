// backup sichert die Podcast-Datenbank aus dem Bucket in einen
// zeitgestempelten, komprimierten Backup-Schlüssel und rotiert alte Backups.
package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	appconfig "sci-cast/config"
	"sci-cast/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kelseyhightower/envconfig"
)

type BackupConfig struct {
	BackupPrefix string `envconfig:"BACKUP_PREFIX" default:"backups/"`
	KeepBackups  int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

func main() {
	log.Println("Starte Backup-Prozess...")

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}
	var backupCfg BackupConfig
	if err := envconfig.Process("", &backupCfg); err != nil {
		log.Fatalf("Fehler beim Laden der Backup-Konfiguration: %v", err)
	}

	client, err := storage.NewS3Client(cfg)
	if err != nil {
		log.Fatalf("Fehler beim Erstellen des S3-Clients: %v", err)
	}

	ctx := context.Background()
	dbKey := cfg.BasePath + cfg.DBFilename

	// 1. Aktuelle Datenbank aus dem Bucket holen und komprimieren
	dumpData, err := fetchAndCompress(ctx, client, cfg.S3Bucket, dbKey)
	if err != nil {
		log.Fatalf("Fehler beim Holen der Datenbank: %v", err)
	}

	// 2. Backup hochladen
	fileName := fmt.Sprintf("%s%s-%s.gz", backupCfg.BackupPrefix, cfg.DBFilename,
		time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(cfg.S3Bucket),
		Key:    aws.String(fileName),
		Body:   bytes.NewReader(dumpData),
	})
	if err != nil {
		log.Fatalf("Fehler beim Hochladen nach S3: %v", err)
	}
	log.Printf("Backup erfolgreich nach s3://%s/%s hochgeladen", cfg.S3Bucket, fileName)

	// 3. Alte Backups rotieren
	if err := rotateBackups(ctx, client, cfg.S3Bucket, backupCfg); err != nil {
		log.Fatalf("Fehler bei der Rotation alter Backups: %v", err)
	}

	log.Println("Backup-Prozess erfolgreich abgeschlossen.")
}

func fetchAndCompress(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer obj.Body.Close()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := io.Copy(gzipWriter, obj.Body); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func rotateBackups(ctx context.Context, client *s3.Client, bucket string, cfg BackupConfig) error {
	output, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(cfg.BackupPrefix),
	})
	if err != nil {
		return err
	}

	var backups []struct {
		Key          string
		LastModified time.Time
	}
	for _, obj := range output.Contents {
		if !strings.HasSuffix(aws.ToString(obj.Key), ".gz") {
			continue
		}
		backups = append(backups, struct {
			Key          string
			LastModified time.Time
		}{aws.ToString(obj.Key), aws.ToTime(obj.LastModified)})
	}

	if len(backups) <= cfg.KeepBackups {
		log.Printf("Weniger als %d Backups vorhanden, keine Rotation nötig.", cfg.KeepBackups)
		return nil
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].LastModified.After(backups[j].LastModified)
	})

	for _, obj := range backups[cfg.KeepBackups:] {
		log.Printf("Lösche altes Backup: %s", obj.Key)
		_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(obj.Key),
		})
		if err != nil {
			log.Printf("Fehler beim Löschen von %s: %v", obj.Key, err)
		}
	}

	return nil
}
