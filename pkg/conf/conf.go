// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath  = "/etc/config/conf.json"
	defaultSecretsPath = "/etc/secrets/secrets.json"
)

// Load the configuration from the config file and the secrets file.
//
//   - /etc/config/conf.json (or $HYPERVISOR_STATS_CONFIG)
//   - /etc/secrets/secrets.json (or $HYPERVISOR_STATS_SECRETS)
//
// Values of the secrets file win over the config file. The secrets file is
// optional. Files ending in .yaml or .yml are parsed as yaml.
func GetConfigOrDie[C any]() C {
	// Both files are read as raw maps, so that a key missing in the secrets
	// does not reset the value of the config file to the zero value.
	configPath := getenv("HYPERVISOR_STATS_CONFIG", defaultConfigPath)
	base, err := readRawConfig(configPath)
	if err != nil {
		panic(fmt.Errorf("conf: failed to read %s: %w", configPath, err))
	}
	secretsPath := getenv("HYPERVISOR_STATS_SECRETS", defaultSecretsPath)
	secrets, err := readRawConfig(secretsPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("conf: no secrets file, using config file only", "path", secretsPath)
	case err != nil:
		panic(fmt.Errorf("conf: failed to read %s: %w", secretsPath, err))
	}
	c, err := newConfigFromMaps[C](base, secrets)
	if err != nil {
		panic(fmt.Errorf("conf: failed to decode config: %w", err))
	}
	return c
}

func getenv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func newConfigFromMaps[C any](base, override map[string]any) (C, error) {
	var c C
	// Round trip through json, yaml maps decode the same way.
	mergedBytes, err := json.Marshal(mergeMaps(base, override))
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(mergedBytes, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Read the config as a map from the given file path.
func readRawConfig(path string) (map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readRawYAMLConfigFromBytes(bytes)
	default:
		return readRawConfigFromBytes(bytes)
	}
}

func readRawConfigFromBytes(data []byte) (map[string]any, error) {
	var conf map[string]any
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func readRawYAMLConfigFromBytes(data []byte) (map[string]any, error) {
	var conf map[string]any
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// Recursively override dst with src, in place. Nested maps are merged, nil
// values in src keep the value of dst.
func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	result := dst
	for k, v := range src {
		if v == nil {
			continue
		}
		if dstVal, ok := dst[k]; ok {
			dstMap, dstIsMap := dstVal.(map[string]any)
			srcMap, srcIsMap := v.(map[string]any)
			if dstIsMap && srcIsMap {
				result[k] = mergeMaps(dstMap, srcMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}
