// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMergeMaps(t *testing.T) {
	// Test basic merge
	dst := map[string]any{
		"a": "original",
		"b": map[string]any{"nested": "value"},
	}
	src := map[string]any{
		"a": "overridden",
		"c": "new",
	}

	mergeMaps(dst, src)

	if dst["a"] != "overridden" {
		t.Errorf("Expected 'a' to be 'overridden', got %v", dst["a"])
	}
	if dst["c"] != "new" {
		t.Errorf("Expected 'c' to be 'new', got %v", dst["c"])
	}

	// Test nested merge
	dst = map[string]any{
		"nested": map[string]any{
			"keep":     "original",
			"override": "old",
		},
	}
	src = map[string]any{
		"nested": map[string]any{
			"override": "new",
			"add":      "added",
		},
	}

	mergeMaps(dst, src)

	nested := dst["nested"].(map[string]any)
	if nested["keep"] != "original" {
		t.Errorf("Expected nested 'keep' to be 'original', got %v", nested["keep"])
	}
	if nested["override"] != "new" {
		t.Errorf("Expected nested 'override' to be 'new', got %v", nested["override"])
	}
	if nested["add"] != "added" {
		t.Errorf("Expected nested 'add' to be 'added', got %v", nested["add"])
	}

	// Test nil value handling
	dst = map[string]any{"key": "value"}
	src = map[string]any{"key": nil}

	mergeMaps(dst, src)

	if dst["key"] != "value" {
		t.Errorf("Expected 'key' to remain 'value' when src is nil, got %v", dst["key"])
	}
}

func TestMergeMaps_NilDestination(t *testing.T) {
	merged := mergeMaps(nil, map[string]any{"a": 1})
	if merged["a"] != 1 {
		t.Errorf("Expected 'a' to be 1, got %v", merged["a"])
	}
}

type testConfig struct {
	LoggingConfig  `json:"logging"`
	KeystoneConfig `json:"keystone"`
}

func TestNewConfigFromMaps(t *testing.T) {
	base := map[string]any{
		"logging": map[string]any{"level": "debug", "format": "json"},
		"keystone": map[string]any{
			"url":      "http://keystone:5000/v3",
			"username": "from-configmap",
		},
	}
	override := map[string]any{
		"keystone": map[string]any{
			"username": "admin",
			"password": "secret",
		},
	}
	c, err := newConfigFromMaps[testConfig](base, override)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.LevelStr != "debug" || c.Format != "json" {
		t.Errorf("unexpected logging config %+v", c.LoggingConfig)
	}
	if c.URL != "http://keystone:5000/v3" {
		t.Errorf("expected keystone url to be kept, got %s", c.URL)
	}
	if c.OSUsername != "admin" || c.OSPassword != "secret" {
		t.Errorf("expected secrets to override the config, got %+v", c.KeystoneConfig)
	}
}

func TestNewConfigFromMaps_TypeMismatch(t *testing.T) {
	base := map[string]any{"logging": "not-an-object"}
	if _, err := newConfigFromMaps[testConfig](base, nil); err == nil {
		t.Fatal("expected an error for a mistyped section")
	}
}

func TestReadRawConfig(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "conf.json")
	if err := os.WriteFile(jsonPath, []byte(`{"logging": {"level": "warn"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "secrets.yaml")
	yamlData := "keystone:\n  username: admin\n  password: secret\n"
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0o600); err != nil {
		t.Fatal(err)
	}

	base, err := readRawConfig(jsonPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	override, err := readRawConfig(yamlPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	c, err := newConfigFromMaps[testConfig](base, override)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.LevelStr != "warn" {
		t.Errorf("expected level warn, got %s", c.LevelStr)
	}
	if c.OSUsername != "admin" || c.OSPassword != "secret" {
		t.Errorf("expected yaml secrets to be read, got %+v", c.KeystoneConfig)
	}
}

func TestReadRawConfig_Missing(t *testing.T) {
	if _, err := readRawConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestGetConfigOrDie(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "conf.json")
	secretsPath := filepath.Join(dir, "secrets.json")
	if err := os.WriteFile(confPath, []byte(`{"keystone": {"url": "http://keystone/v3"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(secretsPath, []byte(`{"keystone": {"password": "secret"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HYPERVISOR_STATS_CONFIG", confPath)
	t.Setenv("HYPERVISOR_STATS_SECRETS", secretsPath)

	c := GetConfigOrDie[testConfig]()
	if c.URL != "http://keystone/v3" || c.OSPassword != "secret" {
		t.Errorf("unexpected config %+v", c.KeystoneConfig)
	}
}

func TestGetConfigOrDie_WithoutSecrets(t *testing.T) {
	dir := t.TempDir()
	confPath := filepath.Join(dir, "conf.yaml")
	content := "keystone:\n  url: http://keystone/v3\n  password: inline\n"
	if err := os.WriteFile(confPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HYPERVISOR_STATS_CONFIG", confPath)
	t.Setenv("HYPERVISOR_STATS_SECRETS", filepath.Join(dir, "missing.json"))

	c := GetConfigOrDie[testConfig]()
	if c.URL != "http://keystone/v3" || c.OSPassword != "inline" {
		t.Errorf("unexpected config %+v", c.KeystoneConfig)
	}
}

func TestGetConfigOrDie_MissingConfig(t *testing.T) {
	t.Setenv("HYPERVISOR_STATS_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a missing config file")
		}
	}()
	GetConfigOrDie[testConfig]()
}
