package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// credentialsFile is the YAML credential layout:
//
//	gemini:
//	  api_keys:
//	    - key-one
//	    - key-two
type credentialsFile struct {
	Gemini struct {
		APIKeys []string `yaml:"api_keys"`
	} `yaml:"gemini"`
}

// loadGeminiKeys reads keys from the YAML credentials file when one is
// configured, falling back to the numbered environment slots.
func loadGeminiKeys(path string) ([]string, error) {
	if path == "" {
		return envAPIKeys(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var creds credentialsFile
	if err := yaml.Unmarshal(raw, &creds); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var keys []string
	for _, key := range creds.Gemini.APIKeys {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%s contains no api keys", path)
	}
	return keys, nil
}
