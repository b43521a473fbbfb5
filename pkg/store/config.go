package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config keys, shared with the persistent flags bound in pkg/commands.
const (
	KeyPath      = "path"
	KeyBaseURL   = "base-url"
	KeyPageSize  = "page-size"
	KeyDebounce  = "debounce-ms"
	KeySeedPages = "seed-pages"
	KeyTimeout   = "timeout"
	KeyLogLevel  = "log-level"
)

// Config is read once per process; values are constant afterwards.
type Config interface {
	BasePath() string
	BaseURL() string
	PageSize() int
	Debounce() time.Duration
	SeedPages() int
	Timeout() time.Duration
	LogLevel() string
}

func init() {
	viper.SetDefault(KeyPath, "~/.notes")
	viper.SetDefault(KeyBaseURL, "http://localhost:8080")
	viper.SetDefault(KeyPageSize, 9)
	viper.SetDefault(KeyDebounce, 300)
	viper.SetDefault(KeySeedPages, 3)
	viper.SetDefault(KeyTimeout, "30s")
	viper.SetDefault(KeyLogLevel, "warn")
}

// LoadConfig reads .env, the environment, and an optional .notes.yaml.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: load .env: %w", err)
	}

	viper.SetConfigName(".notes") // .yaml is implicit
	viper.SetEnvPrefix("NOTES")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("NOTES_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	viper.AddConfigPath("$HOME")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	return configFrom(viper.GetViper())
}

func configFrom(v *viper.Viper) (Config, error) {
	path, err := homedir.Expand(v.GetString(KeyPath))
	if err != nil {
		return nil, fmt.Errorf("store: expand %s: %w", KeyPath, err)
	}
	cfg := &fileConfig{
		Path:      path,
		URL:       strings.TrimRight(strings.TrimSpace(v.GetString(KeyBaseURL)), "/"),
		Size:      v.GetInt(KeyPageSize),
		DebounceM: v.GetInt(KeyDebounce),
		Seed:      v.GetInt(KeySeedPages),
		Wait:      v.GetDuration(KeyTimeout),
		Level:     strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type fileConfig struct {
	Path      string        `json:"path"`
	URL       string        `json:"baseUrl"`
	Size      int           `json:"pageSize"`
	DebounceM int           `json:"debounceMs"`
	Seed      int           `json:"seedPages"`
	Wait      time.Duration `json:"timeout"`
	Level     string        `json:"logLevel"`
}

func (f *fileConfig) validate() error {
	u, err := url.Parse(f.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("store: invalid %s %q", KeyBaseURL, f.URL)
	}
	if f.Size < 1 {
		return fmt.Errorf("store: %s must be positive, got %d", KeyPageSize, f.Size)
	}
	if f.DebounceM < 0 {
		return fmt.Errorf("store: %s must not be negative, got %d", KeyDebounce, f.DebounceM)
	}
	if f.Seed < 0 {
		return fmt.Errorf("store: %s must not be negative, got %d", KeySeedPages, f.Seed)
	}
	if f.Path == "" {
		return fmt.Errorf("store: %s required", KeyPath)
	}
	return nil
}

func (f *fileConfig) BasePath() string        { return f.Path }
func (f *fileConfig) BaseURL() string         { return f.URL }
func (f *fileConfig) PageSize() int           { return f.Size }
func (f *fileConfig) Debounce() time.Duration { return time.Duration(f.DebounceM) * time.Millisecond }
func (f *fileConfig) SeedPages() int          { return f.Seed }
func (f *fileConfig) Timeout() time.Duration  { return f.Wait }
func (f *fileConfig) LogLevel() string        { return f.Level }
