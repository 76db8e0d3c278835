// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/adaptrank/internal/ranking"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Output != nil {
		t.Errorf("Logging.Output should be nil in defaults")
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Server.Addr() = %q, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Server.FeedbackRateLimit != 600 {
		t.Errorf("Server.FeedbackRateLimit = %d, want 600", cfg.Server.FeedbackRateLimit)
	}

	if cfg.Ranking.Weights.Bandit != 0.4 {
		t.Errorf("Ranking.Weights.Bandit = %v, want 0.4", cfg.Ranking.Weights.Bandit)
	}
	if cfg.Ranking.Bandit.Mode != ranking.BanditModeSample {
		t.Errorf("Ranking.Bandit.Mode = %q, want sample", cfg.Ranking.Bandit.Mode)
	}

	if cfg.Bandit.Store.Backend != "memory" {
		t.Errorf("Bandit.Store.Backend = %q, want memory", cfg.Bandit.Store.Backend)
	}
	if cfg.Bandit.Store.KeyPrefix != "thompson:" {
		t.Errorf("Bandit.Store.KeyPrefix = %q, want thompson:", cfg.Bandit.Store.KeyPrefix)
	}
	if cfg.Bandit.StatsInterval != 30*time.Second {
		t.Errorf("Bandit.StatsInterval = %v, want 30s", cfg.Bandit.StatsInterval)
	}

	if cfg.Sources.Interactions || cfg.Sources.Catalog {
		t.Errorf("external sources should be disabled by default")
	}
	if !cfg.Sources.RecordProfiles {
		t.Errorf("Sources.RecordProfiles = false, want true")
	}
	if cfg.Catalog.Addr != "localhost:6334" {
		t.Errorf("Catalog.Addr = %q, want localhost:6334", cfg.Catalog.Addr)
	}

	if cfg.Events.Enabled {
		t.Errorf("Events.Enabled should be false by default")
	}
	if cfg.Events.Stream.Name != "RANKING_FEEDBACK" {
		t.Errorf("Events.Stream.Name = %q, want RANKING_FEEDBACK", cfg.Events.Stream.Name)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v, want nil", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"BANDIT_BACKEND", "bandit.store.backend"},
		{"REDIS_ADDR", "bandit.store.redis_addr"},
		{"QDRANT_ADDR", "catalog.addr"},
		{"NATS_ENABLED", "events.enabled"},
		{"nats_url", "events.url"},
		{"RANKING_SEED", "ranking.bandit.seed"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestProcessSliceFields(t *testing.T) {
	k := koanf.New(".")
	if err := k.Set("server.cors_origins", " https://a.example , ,https://b.example"); err != nil {
		t.Fatal(err)
	}
	if err := k.Set("events.stream.subjects", []string{"feedback.>"}); err != nil {
		t.Fatal(err)
	}

	if err := processSliceFields(k); err != nil {
		t.Fatalf("processSliceFields() error = %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if got := k.Strings("server.cors_origins"); !reflect.DeepEqual(got, want) {
		t.Errorf("cors_origins = %v, want %v", got, want)
	}
	if got := k.Strings("events.stream.subjects"); !reflect.DeepEqual(got, []string{"feedback.>"}) {
		t.Errorf("subjects = %v, want [feedback.>]", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
ranking:
  weights:
    bandit: 0.5
    collaborative: 0.2
    relevance: 0.2
    affordability: 0.1
  diversity:
    window_size: 5
bandit:
  store:
    backend: badger
    badger_path: ` + filepath.Join(dir, "bandit") + `
events:
  enabled: true
  stream:
    subjects: ["feedback.>", "ratings.>"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Ranking.Weights.Bandit != 0.5 {
		t.Errorf("Ranking.Weights.Bandit = %v, want 0.5", cfg.Ranking.Weights.Bandit)
	}
	if cfg.Ranking.Diversity.WindowSize != 5 {
		t.Errorf("Ranking.Diversity.WindowSize = %d, want 5", cfg.Ranking.Diversity.WindowSize)
	}
	// untouched values keep their defaults
	if cfg.Ranking.Diversity.NoiseFraction != ranking.DefaultConfig().Diversity.NoiseFraction {
		t.Errorf("Ranking.Diversity.NoiseFraction = %v, want default", cfg.Ranking.Diversity.NoiseFraction)
	}
	if cfg.Bandit.Store.Backend != "badger" {
		t.Errorf("Bandit.Store.Backend = %q, want badger", cfg.Bandit.Store.Backend)
	}
	if !cfg.Events.Enabled {
		t.Errorf("Events.Enabled = false, want true")
	}
	if len(cfg.Events.Stream.Subjects) != 2 {
		t.Errorf("Events.Stream.Subjects = %v, want 2 subjects", cfg.Events.Stream.Subjects)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://shop.example,https://admin.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://shop.example", "https://admin.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() with malformed YAML should fail")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BANDIT_BACKEND", "etcd")

	if _, err := Load(); err == nil {
		t.Error("Load() with unknown bandit backend should fail")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}
