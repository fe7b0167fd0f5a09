package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds runtime configuration. Values come from built-in defaults,
// an optional YAML file and finally the environment.
type Config struct {
	Port        string `koanf:"port"`
	Env         string `koanf:"env"`
	DatabaseURL string `koanf:"database_url"`
	// SQL holds the discrete MOVIETHING_SQL_* settings; used to build
	// DatabaseURL when it is not given directly.
	SQL               SQLConfig `koanf:"sql"`
	DBConnectAttempts uint      `koanf:"db_connect_attempts"`

	TMDBAPIKey   string        `koanf:"tmdb_api_key"`
	TMDBBaseURL  string        `koanf:"tmdb_base_url"`
	TMDBLanguage string        `koanf:"tmdb_language"`
	TMDBTimeout  time.Duration `koanf:"tmdb_timeout"`
	SearchPages  int           `koanf:"search_pages"`

	ValidAPIKey    string `koanf:"valid_api_key"`
	RSSTitle       string `koanf:"rss_title"`
	RSSDescription string `koanf:"rss_description"`
	BaseURL        string `koanf:"base_url"`

	CacheEnabled   bool          `koanf:"cache_enabled"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	ValkeyAddr     string        `koanf:"valkey_addr"`
	ValkeyPassword string        `koanf:"valkey_password"`

	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	RateLimitRequests  int           `koanf:"rate_limit_requests"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`

	ChartOtherThreshold int `koanf:"chart_other_threshold"`

	Log LogConfig `koanf:"log"`
}

type SQLConfig struct {
	Host string `koanf:"host"`
	Port string `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	DB   string `koanf:"db"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// ConfigPathEnvVar overrides where the YAML config file is looked up.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml", "/etc/movielog/config.yaml"}

func defaults() Config {
	return Config{
		Port:                "3000",
		Env:                 "development",
		DBConnectAttempts:   5,
		TMDBBaseURL:         "https://api.themoviedb.org/3",
		TMDBLanguage:        "en-US",
		TMDBTimeout:         15 * time.Second,
		SearchPages:         10,
		RSSTitle:            "Movie Log",
		RSSDescription:      "Recently watched movies",
		BaseURL:             "http://localhost:3000",
		CacheTTL:            2 * time.Minute,
		RateLimitRequests:   120,
		RateLimitWindow:     time.Minute,
		ChartOtherThreshold: 3,
		Log:                 LogConfig{Level: "info", Format: "json"},
	}
}

// envKeys maps environment variables (lowercased) onto koanf paths. Anything
// not listed is ignored.
var envKeys = map[string]string{
	"port":                       "port",
	"server_port":                "port",
	"env":                        "env",
	"node_env":                   "env",
	"database_url":               "database_url",
	"db_connect_attempts":        "db_connect_attempts",
	"moviething_sql_host":        "sql.host",
	"moviething_sql_port":        "sql.port",
	"moviething_sql_user":        "sql.user",
	"moviething_sql_pass":        "sql.pass",
	"moviething_sql_db":          "sql.db",
	"moviething_tmdb_api_key":    "tmdb_api_key",
	"tmdb_api_key":               "tmdb_api_key",
	"tmdb_base_url":              "tmdb_base_url",
	"tmdb_language":              "tmdb_language",
	"tmdb_timeout":               "tmdb_timeout",
	"search_pages":               "search_pages",
	"moviething_valid_api_key":   "valid_api_key",
	"moviething_rss_title":       "rss_title",
	"moviething_rss_description": "rss_description",
	"moviething_base_url":        "base_url",
	"cache_enabled":              "cache_enabled",
	"cache_ttl":                  "cache_ttl",
	"valkey_addr":                "valkey_addr",
	"valkey_password":            "valkey_password",
	"cors_allowed_origins":       "cors_allowed_origins",
	"rate_limit_requests":        "rate_limit_requests",
	"rate_limit_window":          "rate_limit_window",
	"chart_other_threshold":      "chart_other_threshold",
	"log_level":                  "log.level",
	"log_format":                 "log.format",
	"log_file":                   "log.file",
}

func envKey(key string) string {
	return envKeys[strings.ToLower(key)]
}

// Load builds the configuration: defaults, then the YAML file (if found),
// then the environment.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	if err := splitList(k, "cors_allowed_origins"); err != nil {
		return Config{}, err
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = c.SQL.URL()
	}
	return c, c.Validate()
}

// URL assembles a postgres connection URL from the discrete settings.
func (s SQLConfig) URL() string {
	host := s.Host
	if host == "" {
		host = "localhost"
	}
	port := s.Port
	if port == "" {
		port = "5432"
	}
	db := s.DB
	if db == "" {
		db = "movies"
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	switch {
	case s.User != "" && s.Pass != "":
		u.User = url.UserPassword(s.User, s.Pass)
	case s.User != "":
		u.User = url.User(s.User)
	}
	return u.String()
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Validate rejects configurations that cannot serve requests. Production
// additionally requires the provider key and the shared API key.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.SearchPages <= 0 {
		errs = append(errs, errors.New("search_pages must be positive"))
	}
	if c.ChartOtherThreshold < 0 {
		errs = append(errs, errors.New("chart_other_threshold must not be negative"))
	}
	if c.IsProduction() {
		if c.TMDBAPIKey == "" {
			errs = append(errs, errors.New("MOVIETHING_TMDB_API_KEY is required in production"))
		}
		if c.ValidAPIKey == "" {
			errs = append(errs, errors.New("MOVIETHING_VALID_API_KEY is required in production"))
		}
	}
	return errors.Join(errs...)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitList turns a comma separated env value into a list.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}
