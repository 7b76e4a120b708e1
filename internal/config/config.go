// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, the external AI/vector
// services, the messaging gateway, and the admin panel credentials.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "whatsapp-rag-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// SupabaseConfig holds the connection settings for the hosted vector store.
type SupabaseConfig struct {
	URL     string // SUPABASE_URL (project base URL)
	Key     string // SUPABASE_KEY (service role or anon key)
	Table   string // SUPABASE_TABLE (chunk table, default "document_chunks")
	MatchFn string // SUPABASE_MATCH_FN (similarity RPC, default "match_documents")
	Timeout time.Duration
}

// EmbeddingsConfig holds the OpenAI-compatible embeddings endpoint settings.
type EmbeddingsConfig struct {
	URL     string // EMBEDDINGS_URL (base URL, e.g. "https://api.openai.com/v1")
	APIKey  string // EMBEDDINGS_API_KEY
	Model   string // EMBEDDINGS_MODEL
	Timeout time.Duration
}

// GroqConfig holds the hosted LLM (chat completions) settings.
type GroqConfig struct {
	URL          string // GROQ_API_URL (base URL of the OpenAI-compatible API)
	APIKey       string // GROQ_API_KEY
	DefaultModel string // DEFAULT_MODEL (initial Settings.Model)
	Timeout      time.Duration
}

// EvolutionConfig holds the WhatsApp messaging gateway settings.
type EvolutionConfig struct {
	URL      string // EVOLUTION_API_URL
	APIKey   string // EVOLUTION_API_KEY
	Instance string // EVOLUTION_INSTANCE (default outbound instance)
	Timeout  time.Duration
}

// AdminConfig holds the admin panel login and session settings.
type AdminConfig struct {
	Username   string        // ADMIN_USERNAME
	Password   string        // ADMIN_PASSWORD
	SessionTTL time.Duration // ADMIN_SESSION_TTL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath       string // SQLite path (whitelist, settings, document records)
	TriggerWord  string // default trigger token (e.g. "@siri")
	TopK         int    // retrieval depth for the answer pipeline
	ChunkSize    int    // ingestion window size in characters
	ChunkOverlap int    // ingestion window overlap in characters
	MaxUploadMB  int    // admin upload cap in MiB

	// External services
	Supabase   SupabaseConfig
	Embeddings EmbeddingsConfig
	Groq       GroqConfig
	Evolution  EvolutionConfig

	// Admin panel
	Admin AdminConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:       getenv("DB_PATH", "app.db"),
		TriggerWord:  getenv("TRIGGER_WORD", "@siri"),
		TopK:         getint("TOP_K", 4),
		ChunkSize:    getint("CHUNK_SIZE", 1000),
		ChunkOverlap: getint("CHUNK_OVERLAP", 200),
		MaxUploadMB:  getint("MAX_UPLOAD_MB", 16),

		// External services
		Supabase: SupabaseConfig{
			URL:     strings.TrimRight(getenv("SUPABASE_URL", ""), "/"),
			Key:     getenv("SUPABASE_KEY", ""),
			Table:   getenv("SUPABASE_TABLE", "document_chunks"),
			MatchFn: getenv("SUPABASE_MATCH_FN", "match_documents"),
			Timeout: getdur("SUPABASE_TIMEOUT", 15*time.Second),
		},
		Embeddings: EmbeddingsConfig{
			URL:     strings.TrimRight(getenv("EMBEDDINGS_URL", "https://api.openai.com/v1"), "/"),
			APIKey:  getenv("EMBEDDINGS_API_KEY", ""),
			Model:   getenv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
			Timeout: getdur("EMBEDDINGS_TIMEOUT", 30*time.Second),
		},
		Groq: GroqConfig{
			URL:          strings.TrimRight(getenv("GROQ_API_URL", "https://api.groq.com/openai/v1"), "/"),
			APIKey:       getenv("GROQ_API_KEY", ""),
			DefaultModel: getenv("DEFAULT_MODEL", "llama-3.3-70b-versatile"),
			Timeout:      getdur("GROQ_TIMEOUT", 60*time.Second),
		},
		Evolution: EvolutionConfig{
			URL:      strings.TrimRight(getenv("EVOLUTION_API_URL", ""), "/"),
			APIKey:   getenv("EVOLUTION_API_KEY", ""),
			Instance: getenv("EVOLUTION_INSTANCE", ""),
			Timeout:  getdur("EVOLUTION_TIMEOUT", 15*time.Second),
		},

		// Admin panel
		Admin: AdminConfig{
			Username:   getenv("ADMIN_USERNAME", "admin"),
			Password:   getenv("ADMIN_PASSWORD", ""),
			SessionTTL: getdur("ADMIN_SESSION_TTL", 12*time.Hour),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "whatsapp-rag-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.TriggerWord) == "" {
		return cfg, errors.New("TRIGGER_WORD must not be empty")
	}
	if cfg.TopK < 1 {
		return cfg, errors.New("TOP_K must be >= 1")
	}
	if cfg.ChunkSize < 1 {
		return cfg, errors.New("CHUNK_SIZE must be >= 1")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return cfg, errors.New("CHUNK_OVERLAP must be >= 0 and smaller than CHUNK_SIZE")
	}
	if cfg.MaxUploadMB < 1 {
		return cfg, errors.New("MAX_UPLOAD_MB must be >= 1")
	}
	if cfg.Admin.SessionTTL <= 0 {
		return cfg, errors.New("ADMIN_SESSION_TTL must be > 0")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
