package policy

import (
	"github.com/jsphweid/keytune/model"
)

// RestPolicy maps punctuation onto fixed rest durations.
type RestPolicy map[rune]model.Duration

var CanonicalRests = RestPolicy{
	'—': model.Half,
	'–': model.Half,
	'-': model.Half,
	'.': model.Quarter,
	'&': model.Eighth,
	'?': model.Sixteenth,
	'!': model.ThirtySecond,
}

// ExtendedRests is the optional second punctuation set.
var ExtendedRests = RestPolicy{
	'/': model.Half,
	'"': model.Quarter,
	'%': model.Quarter,
	'$': model.Eighth,
	'#': model.Eighth,
	'*': model.Sixteenth,
	'=': model.Sixteenth,
	'+': model.Sixteenth,
	'^': model.ThirtySecond,
}

func (r RestPolicy) RestFor(c rune) (model.Duration, bool) {
	d, ok := r[c]
	return d, ok
}

// Merge returns a new policy holding r's entries plus other's, skipping any
// character listed in exclude.
func (r RestPolicy) Merge(other RestPolicy, exclude ...rune) RestPolicy {
	skip := make(map[rune]bool, len(exclude))
	for _, c := range exclude {
		skip[c] = true
	}
	res := make(RestPolicy, len(r)+len(other))
	for c, d := range r {
		res[c] = d
	}
	for c, d := range other {
		if skip[c] {
			continue
		}
		res[c] = d
	}
	return res
}
