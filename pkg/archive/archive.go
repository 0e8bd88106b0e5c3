// Package archive складывает транскрипты сессий в объектное хранилище.
//
// Архивирование опционально: при невключённой конфигурации все операции
// молча становятся no-op. Ошибка архивации никогда не валит сессию.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/sommelier-ai/pkg/config"
)

// transcriptPrefix — общий префикс ключей транскриптов в бакете.
const transcriptPrefix = "transcripts/"

// Store загружает и читает транскрипты сессий.
type Store struct {
	api    *minio.Client
	bucket string
}

// New создает клиент архива, используя наш конфиг.
//
// Возвращает (nil, nil) если секция s3 не настроена — вызывающий
// проверяет Store на nil и пропускает архивирование.
func New(cfg config.S3Config) (*Store, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &Store{
		api:    minioClient,
		bucket: cfg.Bucket,
	}, nil
}

// SaveTranscript загружает текст сессии под ключ transcripts/<session>.log.
func (s *Store) SaveTranscript(ctx context.Context, sessionID string, transcript []byte) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	key := transcriptPrefix + sessionID + ".log"
	reader := bytes.NewReader(transcript)

	_, err := s.api.PutObject(ctx, s.bucket, key, reader, int64(len(transcript)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return fmt.Errorf("failed to upload transcript %s: %w", key, err)
	}

	return nil
}

// StoredTranscript — запись о сохранённом транскрипте.
type StoredTranscript struct {
	SessionID    string
	Size         int64
	LastModified time.Time
}

// ListTranscripts возвращает все сохранённые транскрипты.
func (s *Store) ListTranscripts(ctx context.Context) ([]StoredTranscript, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    transcriptPrefix,
		Recursive: true,
	}

	var out []StoredTranscript
	for obj := range s.api.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		sessionID := obj.Key
		sessionID = sessionID[len(transcriptPrefix):]
		if len(sessionID) > 4 && sessionID[len(sessionID)-4:] == ".log" {
			sessionID = sessionID[:len(sessionID)-4]
		}
		out = append(out, StoredTranscript{
			SessionID:    sessionID,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	return out, nil
}

// LoadTranscript скачивает транскрипт сессии целиком в память.
func (s *Store) LoadTranscript(ctx context.Context, sessionID string) ([]byte, error) {
	key := transcriptPrefix + sessionID + ".log"

	obj, err := s.api.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript %s: %w", key, err)
	}
	defer obj.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj); err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", key, err)
	}

	return buf.Bytes(), nil
}
