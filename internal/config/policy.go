package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"hr-approvals/internal/domain"
)

// Policy holds the tunable approval rules loaded from POLICY_FILE.
//
//	tenure:
//	  - {years: 1, days: 12}
//	  - {years: 2, days: 14}
//	role_aliases:
//	  jefe: SUPERVISOR
type Policy struct {
	// Tenure replaces the built-in tenure table when non-empty.
	Tenure []domain.TenureBand `yaml:"tenure"`
	// RoleAliases adds legacy role spellings on top of the built-in ones.
	RoleAliases map[string]string `yaml:"role_aliases"`
}

// LoadPolicy reads a policy file. An empty path yields an empty Policy.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return &Policy{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy decodes policy YAML, rejecting unknown keys.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	for alias, role := range p.RoleAliases {
		if alias == "" || role == "" {
			return nil, fmt.Errorf("role_aliases: empty alias or role in %q: %q", alias, role)
		}
	}
	return &p, nil
}
