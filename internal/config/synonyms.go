package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// knownRoles are the ledger fields a header synonym can target.
var knownRoles = map[string]bool{
	"identifier":  true,
	"customer":    true,
	"description": true,
	"amount":      true,
	"date":        true,
}

// synonymsFile is the on-disk layout of LEDGER_SYNONYMS_FILE:
//
//	synonyms:
//	  customer: [client, customer]
//	  amount: [total, "price (eur)"]
type synonymsFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// LoadSynonyms reads extra header names per role from a YAML file.
func LoadSynonyms(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}

	var f synonymsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse synonyms file %s: %w", path, err)
	}

	out := make(map[string][]string, len(f.Synonyms))
	for role, names := range f.Synonyms {
		key := strings.ToLower(strings.TrimSpace(role))
		if !knownRoles[key] {
			return nil, fmt.Errorf("synonyms file %s: unknown role %q", path, role)
		}
		out[key] = append(out[key], names...)
	}
	return out, nil
}
