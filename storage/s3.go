package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"sci-cast/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// noCache verhindert, dass Podcast-Clients veraltete Feeds ausliefern.
const noCache = "no-cache"

// NewS3Client erstellt einen S3-Client für den konfigurierten Endpunkt.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// ObjectStore kapselt alle Bucket-Zugriffe des Dienstes.
type ObjectStore struct {
	Client  *s3.Client
	Bucket  string
	BaseURL string
	Logger  *zap.Logger
}

// NewObjectStore erstellt einen ObjectStore für den konfigurierten Bucket.
func NewObjectStore(client *s3.Client, cfg *config.Config, logger *zap.Logger) *ObjectStore {
	return &ObjectStore{Client: client, Bucket: cfg.S3Bucket, BaseURL: cfg.S3URL, Logger: logger}
}

// DownloadFile lädt ein Objekt in eine lokale Datei. Stimmt der MD5-Hash der
// lokalen Datei mit dem ETag des Objekts überein, wird der Download übersprungen.
func (o *ObjectStore) DownloadFile(ctx context.Context, key, localPath string) error {
	head, err := o.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &o.Bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("head object %q: %w", key, err)
	}

	if etag := strings.Trim(aws.ToString(head.ETag), `"`); etag != "" {
		if local, err := fileMD5(localPath); err == nil && local == etag {
			o.Logger.Debug("local copy up to date, skipping download", zap.String("key", key))
			return nil
		}
	}

	obj, err := o.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &o.Bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("get object %q: %w", key, err)
	}
	defer obj.Body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file %q: %w", localPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, obj.Body); err != nil {
		return fmt.Errorf("write local file %q: %w", localPath, err)
	}
	o.Logger.Info("downloaded object", zap.String("key", key), zap.String("path", localPath))
	return nil
}

// UploadFile lädt eine lokale Datei in den Bucket hoch und gibt den Link zurück.
func (o *ObjectStore) UploadFile(ctx context.Context, key, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read local file %q: %w", localPath, err)
	}
	return o.upload(ctx, key, data, "")
}

// UploadString lädt einen String als Objekt hoch, mit Cache-Control: no-cache.
// Feed und Datenbank werden so nie aus einem Zwischenspeicher bedient.
func (o *ObjectStore) UploadString(ctx context.Context, key, content string) (string, error) {
	return o.upload(ctx, key, []byte(content), noCache)
}

// UploadFileNoCache lädt eine lokale Datei mit Cache-Control: no-cache hoch.
func (o *ObjectStore) UploadFileNoCache(ctx context.Context, key, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read local file %q: %w", localPath, err)
	}
	return o.upload(ctx, key, data, noCache)
}

func (o *ObjectStore) upload(ctx context.Context, key string, data []byte, cacheControl string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: &o.Bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	}
	if cacheControl != "" {
		input.CacheControl = &cacheControl
	}

	if _, err := o.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	o.Logger.Info("uploaded object", zap.String("key", key), zap.Int("bytes", len(data)))
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(o.BaseURL, "/"), o.Bucket, key), nil
}

// fileMD5 berechnet den MD5-Hash einer lokalen Datei.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
