// Package config loads notation grammars from JSON files.
package config

import (
	"encoding/json"
	"os"
	"unicode/utf8"

	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/policy"
	"github.com/pkg/errors"
)

// File is the on-disk shape of a grammar. Every field is optional and
// overrides the variant it starts from.
type File struct {
	Variant       string                    `json:"variant,omitempty"`
	Raise         *string                   `json:"raise,omitempty"`
	Lower         *string                   `json:"lower,omitempty"`
	GroupOpen     *string                   `json:"groupOpen,omitempty"`
	GroupClose    *string                   `json:"groupClose,omitempty"`
	Durations     []model.Duration          `json:"durations,omitempty"`
	Rests         map[string]model.Duration `json:"rests,omitempty"`
	ExtendedRests bool                      `json:"extendedRests,omitempty"`
	CaseDynamics  *bool                     `json:"caseDynamics,omitempty"`
	Loud          *float64                  `json:"loud,omitempty"`
	Soft          *float64                  `json:"soft,omitempty"`
	Velocity      *float64                  `json:"velocity,omitempty"`
	Normalize     *bool                     `json:"normalize,omitempty"`
}

func Default() policy.Grammar {
	return policy.Canonical()
}

// Load reads the grammar at path. An empty path yields the default grammar.
func Load(path string) (policy.Grammar, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy.Grammar{}, errors.Wrap(err, "could not read grammar file")
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return policy.Grammar{}, errors.Wrapf(err, "could not parse grammar file %s", path)
	}
	g, err := f.Grammar()
	if err != nil {
		return policy.Grammar{}, errors.Wrapf(err, "invalid grammar file %s", path)
	}
	return g, nil
}

// Grammar applies f on top of its variant and validates the result.
func (f File) Grammar() (policy.Grammar, error) {
	g, err := policy.Variant(f.Variant)
	if err != nil {
		return policy.Grammar{}, err
	}

	markers := []struct {
		name string
		src  *string
		dst  *rune
	}{
		{"raise", f.Raise, &g.Raise},
		{"lower", f.Lower, &g.Lower},
		{"groupOpen", f.GroupOpen, &g.GroupOpen},
		{"groupClose", f.GroupClose, &g.GroupClose},
	}
	for _, m := range markers {
		if m.src == nil {
			continue
		}
		r, err := single(*m.src)
		if err != nil {
			return policy.Grammar{}, errors.Wrap(err, m.name)
		}
		*m.dst = r
	}

	if len(f.Durations) > 0 {
		g.Durations = policy.DurationPolicy{Steps: f.Durations}
	}
	if len(f.Rests) > 0 {
		g.Rests = policy.RestPolicy{}
		for s, d := range f.Rests {
			r, err := single(s)
			if err != nil {
				return policy.Grammar{}, errors.Wrap(err, "rests")
			}
			g.Rests[r] = d
		}
	}
	if f.ExtendedRests {
		g = g.WithExtendedRests()
	}

	if f.CaseDynamics != nil {
		g.CaseDynamics = *f.CaseDynamics
	}
	if f.Loud != nil {
		g.Loud = *f.Loud
	}
	if f.Soft != nil {
		g.Soft = *f.Soft
	}
	if f.Velocity != nil {
		g.DefaultVelocity = *f.Velocity
	}
	if f.Normalize != nil {
		g.Normalize = *f.Normalize
	}

	if err := g.Validate(); err != nil {
		return policy.Grammar{}, err
	}
	return g, nil
}

func single(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.Errorf("%q must be exactly one character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
