package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Models          ModelsConfig    `yaml:"models"`
	Catalog         CatalogConfig   `yaml:"catalog"`
	Weather         WeatherConfig   `yaml:"weather"`
	S3              S3Config        `yaml:"s3"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	App             AppSpecific     `yaml:"app"`
}

// CatalogConfig — настройки клиента винного маркетплейса Cru.
type CatalogConfig struct {
	BaseURL     string            `yaml:"base_url"`     // Базовый URL (например, "https://uk.crustaging.com")
	UserAgent   string            `yaml:"user_agent"`   // User-Agent для всех запросов
	Cookies     map[string]string `yaml:"cookies"`      // Сессионные cookies (frontend, frontend_cid и т.д.)
	RateLimit   int               `yaml:"rate_limit"`   // Запросов в минуту на endpoint
	BurstLimit  int               `yaml:"burst_limit"`  // Burst для rate limiter
	Timeout     string            `yaml:"timeout"`      // Timeout HTTP запросов ("30s")
	SearchLimit int               `yaml:"search_limit"` // Макс. кандидатов от autosuggestion поиска
	WarehouseID int               `yaml:"warehouse_id"` // Склад для addToCart
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *CatalogConfig) GetDefaults() CatalogConfig {
	result := *c // Копируем текущие значения

	if result.BaseURL == "" {
		result.BaseURL = "https://uk.crustaging.com"
	}
	if result.UserAgent == "" {
		result.UserAgent = "cru-script"
	}
	if result.RateLimit == 0 {
		result.RateLimit = 60 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 5
	}
	if result.Timeout == "" {
		result.Timeout = "30s"
	}
	if result.SearchLimit == 0 {
		result.SearchLimit = 10
	}
	if result.WarehouseID == 0 {
		result.WarehouseID = 52 // основной склад UK
	}

	return result
}

// WeatherConfig — настройки погодных инструментов (OpenWeatherMap + ipstack).
type WeatherConfig struct {
	OpenWeatherAPIKey string `yaml:"openweather_api_key"` // Поддерживает ${VAR}
	IPStackAPIKey     string `yaml:"ipstack_api_key"`     // Поддерживает ${VAR}
	OpenWeatherBase   string `yaml:"openweather_base"`
	IPStackBase       string `yaml:"ipstack_base"`
	Timeout           string `yaml:"timeout"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *WeatherConfig) GetDefaults() WeatherConfig {
	result := *c

	if result.OpenWeatherBase == "" {
		result.OpenWeatherBase = "https://api.openweathermap.org/data/2.5"
	}
	if result.IPStackBase == "" {
		result.IPStackBase = "http://api.ipstack.com"
	}
	if result.Timeout == "" {
		result.Timeout = "30s"
	}

	return result
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat string              `yaml:"default_chat"` // Алиас модели по умолчанию
	Definitions map[string]ModelDef `yaml:"definitions"`  // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "gemini", "deepseek" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`   // Custom endpoint для OpenAI-совместимых API
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // Go умеет парсить строки вида "60s", "1m"
}

// S3Config — настройки объектного хранилища для архива транскриптов.
// Секция опциональна: при пустом endpoint архивирование выключено.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled сообщает, настроено ли архивирование.
func (c *S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// ImageProcConfig — настройки обработки изображений (превью этикеток).
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ImageProcConfig) GetDefaults() ImageProcConfig {
	result := *c

	if result.MaxWidth == 0 {
		result.MaxWidth = 750
	}
	if result.Quality == 0 {
		result.Quality = 85
	}

	return result
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug      bool   `yaml:"debug"`
	PromptsDir string `yaml:"prompts_dir"` // Директория с YAML промптами (опционально)
	PromptsDB  string `yaml:"prompts_db"`  // Путь к sqlite базе промптов (опционально)
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
//
// Перед подстановкой пытается загрузить .env из текущей директории —
// отсутствие файла не является ошибкой (как load_dotenv).
func Load(path string) (*AppConfig, error) {
	// 1. Подхватываем .env если есть
	_ = godotenv.Load()

	// 2. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 3. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 4. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 5. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 6. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if len(c.Models.Definitions) == 0 {
		return fmt.Errorf("models.definitions is required")
	}
	if c.Models.DefaultChat != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
			return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
		}
	}
	return nil
}

// GetChatModel возвращает конфигурацию модели по умолчанию или по имени.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}
