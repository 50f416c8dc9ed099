package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultModels is the model list offered when AVAILABLE_MODELS is unset or unparsable.
var DefaultModels = []string{
	"gemma2-9b-it",
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"llama3-70b-8192",
	"llama3-8b-8192",
	"deepseek-r1-distill-llama-70b",
}

// Config holds all application configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	OCR      OCRConfig      `yaml:"ocr"`
	LLM      LLMConfig      `yaml:"llm"`
	Batch    BatchConfig    `yaml:"batch"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// PathsConfig holds the working directories
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir"`
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	LogDir    string `yaml:"log_dir"`
	DBDir     string `yaml:"db_dir"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	// DSN is a SQLite file path or a postgres:// URL.
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
	BusyTimeout     time.Duration `yaml:"busy_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// OCRConfig holds text acquisition configuration
type OCRConfig struct {
	Engine         string `yaml:"engine"` // tesseract | gosseract | textract
	PdftoppmPath   string `yaml:"pdftoppm_path"`
	TesseractPath  string `yaml:"tesseract_path"`
	TessdataDir    string `yaml:"tessdata_dir"`
	Lang           string `yaml:"lang"`
	PSM            int    `yaml:"psm"`
	DPI            int    `yaml:"dpi"`
	MinNativeChars int    `yaml:"min_native_chars"`
	Grayscale      bool   `yaml:"grayscale"`
	AWSRegion      string `yaml:"aws_region"`
	AWSAccessKey   string `yaml:"aws_access_key"`
	AWSSecretKey   string `yaml:"aws_secret_key"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider        string        `yaml:"provider"` // openai | vertex
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	DefaultModel    string        `yaml:"default_model"`
	AvailableModels []string      `yaml:"available_models"`
	Temperature     float32       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxInputChars   int           `yaml:"max_input_chars"`
	VertexProject   string        `yaml:"vertex_project"`
	VertexRegion    string        `yaml:"vertex_region"`
}

// BatchConfig holds orchestration configuration
type BatchConfig struct {
	Workers            int           `yaml:"workers"`
	PageLimit          int           `yaml:"page_limit"`
	DocumentTimeout    time.Duration `yaml:"document_timeout"`
	QueueSize          int           `yaml:"queue_size"`
	IdentifierFallback bool          `yaml:"identifier_fallback"`
	// StateRetention is how long the daemon keeps a finished batch's state for polling.
	StateRetention     time.Duration `yaml:"state_retention"`
}

// StorageConfig selects where raw documents are kept
type StorageConfig struct {
	Backend        string `yaml:"backend"` // local | minio
	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioBucket    string `yaml:"minio_bucket"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"`
	MinioRegion    string `yaml:"minio_region"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text | json
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DefaultConfig returns the built-in defaults rooted at baseDir.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		Paths: PathsConfig{
			BaseDir:   baseDir,
			InputDir:  filepath.Join(baseDir, "input"),
			OutputDir: filepath.Join(baseDir, "output"),
			LogDir:    filepath.Join(baseDir, "logs"),
			DBDir:     filepath.Join(baseDir, "db"),
		},
		Database: DatabaseConfig{
			DSN:             filepath.Join(baseDir, "db", "papers.db"),
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
			BusyTimeout:     5 * time.Second,
		},
		Server: ServerConfig{
			GRPCAddr:    ":8080",
			MetricsAddr: ":9090",
		},
		OCR: OCRConfig{
			Engine:         "tesseract",
			PdftoppmPath:   "pdftoppm",
			TesseractPath:  "tesseract",
			Lang:           "eng",
			PSM:            3,
			DPI:            200,
			MinNativeChars: 200,
			AWSRegion:      "us-east-1",
		},
		LLM: LLMConfig{
			Provider:        "openai",
			BaseURL:         "https://api.groq.com/openai/v1",
			DefaultModel:    DefaultModels[1],
			AvailableModels: append([]string(nil), DefaultModels...),
			Temperature:     0,
			Timeout:         60 * time.Second,
			MaxInputChars:   5000,
			VertexRegion:    "us-central1",
		},
		Batch: BatchConfig{
			Workers:            4,
			PageLimit:          0,
			DocumentTimeout:    5 * time.Minute,
			QueueSize:          16,
			IdentifierFallback: true,
			StateRetention:     time.Hour,
		},
		Storage: StorageConfig{
			Backend:     "local",
			MinioBucket: "papers",
			MinioRegion: "us-east-1",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 5,
		},
	}
}

// LoadConfig loads .env files, then the optional YAML file at path, then environment overrides.
func LoadConfig(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig(getEnv("PAPERS_BASE_DIR", "."))
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	p := &c.Paths
	p.InputDir = getEnv("INPUT_DIR", p.InputDir)
	p.OutputDir = getEnv("OUTPUT_DIR", p.OutputDir)
	p.LogDir = getEnv("LOG_DIR", p.LogDir)
	p.DBDir = getEnv("DB_DIR", p.DBDir)

	d := &c.Database
	d.DSN = getEnv("DB_URL", d.DSN)
	d.MaxConns = getEnvAsInt32("DB_MAX_CONNS", d.MaxConns)
	d.MinConns = getEnvAsInt32("DB_MIN_CONNS", d.MinConns)
	d.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", d.MaxConnLifetime)
	d.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", d.MaxConnIdleTime)
	d.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", d.DialTimeout)
	d.BusyTimeout = getEnvAsDuration("DB_BUSY_TIMEOUT", d.BusyTimeout)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MetricsAddr = getEnv("METRICS_ADDR", c.Server.MetricsAddr)

	o := &c.OCR
	o.Engine = getEnv("OCR_ENGINE", o.Engine)
	o.PdftoppmPath = getEnv("PDFTOPPM_PATH", o.PdftoppmPath)
	o.TesseractPath = getEnv("TESSERACT_PATH", o.TesseractPath)
	o.TessdataDir = getEnv("TESSDATA_PREFIX", o.TessdataDir)
	o.Lang = getEnv("OCR_LANG", o.Lang)
	o.PSM = getEnvAsInt("OCR_PSM", o.PSM)
	o.DPI = getEnvAsInt("OCR_DPI", o.DPI)
	o.MinNativeChars = getEnvAsInt("OCR_MIN_NATIVE_CHARS", o.MinNativeChars)
	o.Grayscale = getEnvAsBool("OCR_GRAYSCALE", o.Grayscale)
	o.AWSRegion = getEnv("AWS_REGION", o.AWSRegion)
	o.AWSAccessKey = getEnv("AWS_ACCESS_KEY_ID", o.AWSAccessKey)
	o.AWSSecretKey = getEnv("AWS_SECRET_ACCESS_KEY", o.AWSSecretKey)

	l := &c.LLM
	l.Provider = getEnv("LLM_PROVIDER", l.Provider)
	l.BaseURL = getEnv("LLM_BASE_URL", l.BaseURL)
	l.APIKey = getEnv("GROQ_API_KEY", getEnv("OPENAI_API_KEY", l.APIKey))
	l.DefaultModel = getEnv("LLM_MODEL", l.DefaultModel)
	l.AvailableModels = getEnvAsList("AVAILABLE_MODELS", l.AvailableModels)
	l.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", l.Temperature)
	l.Timeout = getEnvAsDuration("LLM_TIMEOUT", l.Timeout)
	l.MaxInputChars = getEnvAsInt("LLM_MAX_INPUT_CHARS", l.MaxInputChars)
	l.VertexProject = getEnv("VERTEX_PROJECT", l.VertexProject)
	l.VertexRegion = getEnv("VERTEX_REGION", l.VertexRegion)

	b := &c.Batch
	b.Workers = getEnvAsInt("BATCH_WORKERS", b.Workers)
	b.PageLimit = getEnvAsInt("BATCH_PAGE_LIMIT", b.PageLimit)
	b.DocumentTimeout = getEnvAsDuration("BATCH_DOCUMENT_TIMEOUT", b.DocumentTimeout)
	b.QueueSize = getEnvAsInt("BATCH_QUEUE_SIZE", b.QueueSize)
	b.IdentifierFallback = getEnvAsBool("BATCH_IDENTIFIER_FALLBACK", b.IdentifierFallback)
	b.StateRetention = getEnvAsDuration("BATCH_STATE_RETENTION", b.StateRetention)

	s := &c.Storage
	s.Backend = getEnv("STORAGE_BACKEND", s.Backend)
	s.MinioEndpoint = getEnv("MINIO_ENDPOINT", s.MinioEndpoint)
	s.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", s.MinioAccessKey)
	s.MinioSecretKey = getEnv("MINIO_SECRET_KEY", s.MinioSecretKey)
	s.MinioBucket = getEnv("MINIO_BUCKET", s.MinioBucket)
	s.MinioUseSSL = getEnvAsBool("MINIO_USE_SSL", s.MinioUseSSL)
	s.MinioRegion = getEnv("MINIO_REGION", s.MinioRegion)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.MaxSizeMB = getEnvAsInt("LOG_MAX_SIZE_MB", c.Log.MaxSizeMB)
	c.Log.MaxBackups = getEnvAsInt("LOG_MAX_BACKUPS", c.Log.MaxBackups)
}

// EnsureDirs creates the working directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.InputDir, c.Paths.OutputDir, c.Paths.LogDir, c.Paths.DBDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewAppError(KindConfig, fmt.Sprintf("could not create directory %s", dir), err)
		}
	}
	return nil
}

// ModelAllowed reports whether model is in the available list.
func (c *Config) ModelAllowed(model string) bool {
	for _, m := range c.LLM.AvailableModels {
		if m == model {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList accepts either a JSON array or a comma separated list.
func getEnvAsList(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if strings.HasPrefix(value, "[") {
		var out []string
		if err := json.Unmarshal([]byte(value), &out); err == nil && len(out) > 0 {
			return out
		}
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return ConfigError("DB_URL is required")
	}
	if len(c.LLM.AvailableModels) == 0 {
		return ConfigError("AVAILABLE_MODELS must list at least one model")
	}
	if !c.ModelAllowed(c.LLM.DefaultModel) {
		return ConfigError(fmt.Sprintf("LLM_MODEL %q is not in AVAILABLE_MODELS", c.LLM.DefaultModel))
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return ConfigError("GROQ_API_KEY or OPENAI_API_KEY is required")
		}
	case "vertex":
		if c.LLM.VertexProject == "" {
			return ConfigError("VERTEX_PROJECT is required for the vertex provider")
		}
	default:
		return ConfigError(fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.MaxInputChars <= 0 {
		return ConfigError("LLM_MAX_INPUT_CHARS must be positive")
	}
	switch c.OCR.Engine {
	case "tesseract", "gosseract", "textract":
	default:
		return ConfigError(fmt.Sprintf("unknown OCR_ENGINE %q", c.OCR.Engine))
	}
	switch c.Storage.Backend {
	case "local":
	case "minio":
		if c.Storage.MinioEndpoint == "" || c.Storage.MinioBucket == "" {
			return ConfigError("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend")
		}
	default:
		return ConfigError(fmt.Sprintf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if c.Batch.Workers < 1 {
		return ConfigError("BATCH_WORKERS must be at least 1")
	}
	if c.Batch.PageLimit < 0 {
		return ConfigError("BATCH_PAGE_LIMIT must not be negative")
	}
	if c.Server.GRPCAddr == "" {
		return ConfigError("GRPC_ADDR is required")
	}
	return nil
}
