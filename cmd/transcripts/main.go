// transcripts — утилита для просмотра архива сессий.
//
// Без аргументов печатает список сохранённых транскриптов,
// с аргументом — содержимое указанной сессии.
//
// Использование:
//
//	go run cmd/transcripts/main.go              # список
//	go run cmd/transcripts/main.go 2026-08-28-10-15-42   # одна сессия
//
// Конфигурация:
//
//	Использует секцию s3 из config.yaml в текущей директории
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilkoid/sommelier-ai/pkg/archive"
	"github.com/ilkoid/sommelier-ai/pkg/config"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := archive.New(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to create archive client: %v", err)
	}
	if store == nil {
		fmt.Println("⚠️  s3 section is not configured, nothing to list")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(os.Args) > 1 {
		showTranscript(ctx, store, os.Args[1])
		return
	}
	listTranscripts(ctx, store)
}

func listTranscripts(ctx context.Context, store *archive.Store) {
	items, err := store.ListTranscripts(ctx)
	if err != nil {
		log.Fatalf("Failed to list transcripts: %v", err)
	}

	if len(items) == 0 {
		fmt.Println("Archive is empty")
		return
	}

	fmt.Printf("📼 %d transcript(s):\n\n", len(items))
	for _, item := range items {
		fmt.Printf("%s  %6d bytes  %s\n",
			item.LastModified.Format("2006-01-02 15:04:05"),
			item.Size,
			item.SessionID,
		)
	}
}

func showTranscript(ctx context.Context, store *archive.Store, sessionID string) {
	data, err := store.LoadTranscript(ctx, sessionID)
	if err != nil {
		log.Fatalf("Failed to load transcript %s: %v", sessionID, err)
	}
	os.Stdout.Write(data)
}
