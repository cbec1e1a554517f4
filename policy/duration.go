package policy

import (
	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/util"
	"github.com/pkg/errors"
)

// DurationPolicy maps a lexical unit length onto a duration class. Steps[i]
// is the class for length i+1; lengths past the end clamp to the last step.
type DurationPolicy struct {
	Steps []model.Duration
}

var CanonicalDurations = DurationPolicy{
	Steps: []model.Duration{
		model.Whole,
		model.Half,
		model.Quarter,
		model.Eighth,
		model.Sixteenth,
		model.ThirtySecond,
	},
}

// Ceiling is the shortest length that yields the shortest class.
func (p DurationPolicy) Ceiling() int {
	return len(p.Steps)
}

// DurationFor never returns an invalid class for a validated policy; lengths
// below 1 are treated as 1.
func (p DurationPolicy) DurationFor(unitLength int) model.Duration {
	if len(p.Steps) == 0 {
		return model.Quarter
	}
	i := util.Clamp(unitLength, 1, len(p.Steps)) - 1
	return p.Steps[i]
}

func (p DurationPolicy) Validate() error {
	if len(p.Steps) == 0 {
		return errors.New("duration policy has no steps")
	}
	for i, d := range p.Steps {
		if !d.Valid() {
			return errors.Errorf("duration policy step %d is not a duration class", i+1)
		}
		// longer units may never produce longer notes
		if i > 0 && d < p.Steps[i-1] {
			return errors.Errorf("duration policy step %d (%v) is longer than step %d (%v)", i+1, d, i, p.Steps[i-1])
		}
	}
	return nil
}
