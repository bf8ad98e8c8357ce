// Package config loads the deflection safety policy from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
)

type policyFile struct {
	Safety deflection.Policy `toml:"safety"`
}

// LoadPolicyFile reads a policy file from path. See ParsePolicy.
func LoadPolicyFile(path string) (deflection.Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return deflection.Policy{}, fmt.Errorf("opening policy file: %w", err)
	}
	defer f.Close()

	p, err := ParsePolicy(f)
	if err != nil {
		return deflection.Policy{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy decodes a TOML policy document:
//
//	[safety]
//	earth_aphelion_au = 1.017
//	margin_au = 0.05
//
// Keys that are absent keep their deflection.DefaultPolicy value. Unknown
// keys are rejected so typos do not silently fall back to defaults.
func ParsePolicy(r io.Reader) (deflection.Policy, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return deflection.Policy{}, fmt.Errorf("reading policy: %w", err)
	}

	doc := policyFile{Safety: deflection.DefaultPolicy}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return deflection.Policy{}, fmt.Errorf("unknown policy keys:\n%s", strict.String())
		}
		return deflection.Policy{}, fmt.Errorf("decoding policy: %w", err)
	}

	if err := doc.Safety.Validate(); err != nil {
		return deflection.Policy{}, err
	}
	return doc.Safety, nil
}
