package model

import (
	"math"

	"github.com/pkg/errors"
)

var ErrInvalidTempo = errors.New("tempo must be a positive number of beats per minute")

func ValidateTempo(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return errors.Wrapf(ErrInvalidTempo, "got %v", bpm)
	}
	return nil
}
