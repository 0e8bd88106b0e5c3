package sources

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Регистрируем sqlite3 драйвер

	"github.com/ilkoid/sommelier-ai/pkg/prompts"
)

// DatabaseSource — загрузка промптов из sqlite базы.
//
// Используется для переопределения промптов без пересборки бинаря:
// операторы правят таблицу, цепочка источников подхватывает.
type DatabaseSource struct {
	db    *sql.DB
	table string
}

// OpenDatabaseSource открывает sqlite файл и создаёт источник.
//
// Структура таблицы:
//
//	CREATE TABLE prompts (
//	    id TEXT PRIMARY KEY,
//	    system TEXT,
//	    template TEXT,
//	    variables TEXT,  -- JSON объект
//	    metadata TEXT    -- JSON объект
//	);
func OpenDatabaseSource(path string, table string) (*DatabaseSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open prompts db: %w", err)
	}

	return NewDatabaseSource(db, table), nil
}

// NewDatabaseSource создаёт источник поверх готового соединения.
func NewDatabaseSource(db *sql.DB, table string) *DatabaseSource {
	if table == "" {
		table = "prompts"
	}
	return &DatabaseSource{
		db:    db,
		table: table,
	}
}

// Load загружает промпт из базы данных по ID.
func (s *DatabaseSource) Load(promptID string) (*prompts.PromptFile, error) {
	var system, template, variablesJSON, metadataJSON sql.NullString

	query := fmt.Sprintf(
		"SELECT system, template, variables, metadata FROM %s WHERE id = ?",
		s.table,
	)

	err := s.db.QueryRow(query, promptID).Scan(&system, &template, &variablesJSON, &metadataJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prompt '%s' in table '%s': %w", promptID, s.table, prompts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	file := &prompts.PromptFile{
		System:    system.String,
		Template:  template.String,
		Variables: make(map[string]string),
		Metadata:  make(map[string]any),
	}

	if variablesJSON.Valid && variablesJSON.String != "" {
		if err := json.Unmarshal([]byte(variablesJSON.String), &file.Variables); err != nil {
			return nil, fmt.Errorf("parse prompt variables: %w", err)
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &file.Metadata); err != nil {
			return nil, fmt.Errorf("parse prompt metadata: %w", err)
		}
	}

	return file, nil
}

// Close закрывает соединение с базой.
func (s *DatabaseSource) Close() error {
	return s.db.Close()
}
