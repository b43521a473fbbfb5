package store

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPath, "/tmp/notes-test")
	v.SetDefault(KeyBaseURL, "http://localhost:8080")
	v.SetDefault(KeyPageSize, 9)
	v.SetDefault(KeyDebounce, 300)
	v.SetDefault(KeySeedPages, 3)
	v.SetDefault(KeyTimeout, "30s")
	v.SetDefault(KeyLogLevel, "warn")
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := configFrom(newViper(nil))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.PageSize() != 9 || cfg.SeedPages() != 3 {
		t.Errorf("page size %d seed %d", cfg.PageSize(), cfg.SeedPages())
	}
	if cfg.Debounce() != 300*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Debounce())
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if cfg.BaseURL() != "http://localhost:8080" {
		t.Errorf("base url = %q", cfg.BaseURL())
	}
}

func TestConfigTrimsBaseURLAndExpandsHome(t *testing.T) {
	cfg, err := configFrom(newViper(map[string]interface{}{
		KeyBaseURL: "https://notes.example.com/api/",
		KeyPath:    "~/.notes",
	}))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.BaseURL() != "https://notes.example.com/api" {
		t.Errorf("base url = %q", cfg.BaseURL())
	}
	if strings.HasPrefix(cfg.BasePath(), "~") {
		t.Errorf("path not expanded: %q", cfg.BasePath())
	}
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"page size":  {KeyPageSize: 0},
		"debounce":   {KeyDebounce: -1},
		"seed pages": {KeySeedPages: -2},
		"base url":   {KeyBaseURL: "localhost"},
	}
	for name, overrides := range cases {
		if _, err := configFrom(newViper(overrides)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
