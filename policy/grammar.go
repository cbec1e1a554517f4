// Package policy holds the injectable tables that drive the notation compiler.
package policy

import (
	"unicode"

	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/pitch"
	"github.com/pkg/errors"
)

const (
	VariantCanonical  = "canonical"
	VariantQuoteRaise = "quote-raise"
)

// Grammar bundles every table and marker character the compiler consults.
type Grammar struct {
	Name       string
	Keys       pitch.Table
	Raise      rune
	Lower      rune
	GroupOpen  rune
	GroupClose rune
	Durations  DurationPolicy
	Rests      RestPolicy

	// CaseDynamics maps uppercase letters to Loud and lowercase to Soft.
	// Without it every note gets DefaultVelocity.
	CaseDynamics    bool
	Loud            float64
	Soft            float64
	DefaultVelocity float64

	// Normalize applies NFKC to the input before scanning.
	Normalize bool
}

// Canonical is the grammar used when nothing else is configured: ' raises,
// , lowers, parentheses group chords.
func Canonical() Grammar {
	return Grammar{
		Name:            VariantCanonical,
		Keys:            pitch.Keyboard,
		Raise:           '\'',
		Lower:           ',',
		GroupOpen:       '(',
		GroupClose:      ')',
		Durations:       CanonicalDurations,
		Rests:           CanonicalRests,
		CaseDynamics:    true,
		Loud:            1.0,
		Soft:            0.5,
		DefaultVelocity: 0.8,
		Normalize:       true,
	}
}

// QuoteRaise is the alternative marker set where " raises and , lowers.
func QuoteRaise() Grammar {
	g := Canonical()
	g.Name = VariantQuoteRaise
	g.Raise = '"'
	return g
}

func Variant(name string) (Grammar, error) {
	switch name {
	case "", VariantCanonical:
		return Canonical(), nil
	case VariantQuoteRaise:
		return QuoteRaise(), nil
	}
	return Grammar{}, errors.Errorf("unknown grammar variant %q", name)
}

// WithExtendedRests adds the extended punctuation set, leaving out any
// character the grammar already uses as a marker.
func (g Grammar) WithExtendedRests() Grammar {
	g.Rests = g.Rests.Merge(ExtendedRests, g.markers()...)
	return g
}

func (g Grammar) markers() []rune {
	var res []rune
	for _, c := range []rune{g.Raise, g.Lower, g.GroupOpen, g.GroupClose} {
		if c != 0 {
			res = append(res, c)
		}
	}
	return res
}

// Velocity returns the intensity for a pitch letter as written.
func (g Grammar) Velocity(c rune) float64 {
	if !g.CaseDynamics {
		return g.DefaultVelocity
	}
	if unicode.IsUpper(c) {
		return g.Loud
	}
	return g.Soft
}

func (g Grammar) Validate() error {
	if len(g.Keys) == 0 {
		return errors.New("grammar has an empty key table")
	}
	if err := g.Durations.Validate(); err != nil {
		return err
	}
	for c, d := range g.Rests {
		if !d.Valid() {
			return errors.Errorf("rest %q has no duration class", c)
		}
		if unicode.IsSpace(c) {
			return errors.Errorf("rest %q is whitespace", c)
		}
		if _, ok := g.Keys[unicode.ToLower(c)]; ok {
			return errors.Errorf("rest %q is also a pitch key", c)
		}
	}

	seen := map[rune]string{}
	named := []struct {
		name string
		c    rune
	}{
		{"raise", g.Raise},
		{"lower", g.Lower},
		{"group open", g.GroupOpen},
		{"group close", g.GroupClose},
	}
	for _, m := range named {
		if m.c == 0 {
			continue
		}
		if prev, ok := seen[m.c]; ok {
			return errors.Errorf("%s marker %q collides with %s marker", m.name, m.c, prev)
		}
		seen[m.c] = m.name
		if _, ok := g.Rests[m.c]; ok {
			return errors.Errorf("%s marker %q is also a rest", m.name, m.c)
		}
		if _, ok := g.Keys[unicode.ToLower(m.c)]; ok {
			return errors.Errorf("%s marker %q is also a pitch key", m.name, m.c)
		}
		if unicode.IsSpace(m.c) {
			return errors.Errorf("%s marker is whitespace", m.name)
		}
	}
	if g.GroupOpen == 0 || g.GroupClose == 0 {
		return errors.New("grammar needs both chord group markers")
	}

	for _, v := range []float64{g.Loud, g.Soft, g.DefaultVelocity} {
		if v <= 0 || v > 1 {
			return errors.Errorf("velocity %v outside (0,1]", v)
		}
	}
	return nil
}

// Resolver builds the pitch resolver for this grammar.
func (g Grammar) Resolver() *pitch.Resolver {
	return pitch.NewResolver(g.Keys, g.Raise, g.Lower)
}

// RestFor is a shorthand for g.Rests.RestFor.
func (g Grammar) RestFor(c rune) (model.Duration, bool) {
	return g.Rests.RestFor(c)
}
