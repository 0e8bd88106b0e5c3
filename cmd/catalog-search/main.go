// catalog-search — утилита для проверки доступности каталога Cru.
//
// Выполняет autosuggestion поиск и печатает кандидатов как есть,
// без участия LLM. Удобно для отладки cookies и rate limit'а.
//
// Использование:
//
//	go run cmd/catalog-search/main.go "margaux"
//
// Конфигурация:
//
//	Использует config.yaml из текущей директории
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilkoid/sommelier-ai/pkg/catalog"
	"github.com/ilkoid/sommelier-ai/pkg/config"
	"github.com/ilkoid/sommelier-ai/pkg/utils"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: catalog-search \"term\"")
		os.Exit(1)
	}
	term := os.Args[1]

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer utils.Close()

	client, err := catalog.NewFromConfig(cfg.Catalog)
	if err != nil {
		log.Fatalf("Failed to create catalog client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	result, err := client.Search(ctx, term)
	if err != nil {
		fmt.Printf("❌ Search failed (%s): %v\n", client.ClassifyError(err), err)
		os.Exit(1)
	}

	fmt.Printf("🔍 %q → found=%v, %d candidates (%dms)\n\n",
		term, result.Found, len(result.Candidates), time.Since(start).Milliseconds())

	for i, c := range result.Candidates {
		fmt.Printf("%2d. [%s] %s\n", i+1, c.Type, c.Name)
		if c.Lwin != "" {
			fmt.Printf("    lwin=%s req_path=%s\n", c.Lwin, catalog.ReqPath(c.URL))
		}
	}
}
