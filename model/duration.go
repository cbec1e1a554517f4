package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Duration is a closed set of note-length classes.
type Duration uint8

const (
	Whole Duration = iota + 1
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
)

var durationNames = map[Duration]string{
	Whole:        "whole",
	Half:         "half",
	Quarter:      "quarter",
	Eighth:       "eighth",
	Sixteenth:    "sixteenth",
	ThirtySecond: "thirty-second",
}

// AllDurations lists every class from longest to shortest.
var AllDurations = []Duration{Whole, Half, Quarter, Eighth, Sixteenth, ThirtySecond}

func (d Duration) Valid() bool {
	_, ok := durationNames[d]
	return ok
}

// Denominator is the note value as a fraction of a whole note (4 for a quarter).
func (d Duration) Denominator() int {
	if !d.Valid() {
		return 0
	}
	return 1 << (int(d) - 1)
}

// QuarterUnits is the length measured in quarter notes.
func (d Duration) QuarterUnits() float64 {
	if !d.Valid() {
		return 0
	}
	return 4 / float64(d.Denominator())
}

// Ticks converts to a tick count for the given pulses per quarter note.
// Every class is exact for any ppq divisible by 8.
func (d Duration) Ticks(ppq uint32) uint32 {
	if !d.Valid() {
		return 0
	}
	return ppq * 4 / uint32(d.Denominator())
}

// Seconds converts to wall-clock seconds at tempoBPM quarter notes per minute.
func (d Duration) Seconds(tempoBPM float64) float64 {
	return d.QuarterUnits() * (60 / tempoBPM)
}

// DurationFromTicks is the inverse of Ticks for the classes above.
func DurationFromTicks(ticks, ppq uint32) (Duration, bool) {
	for _, d := range AllDurations {
		if d.Ticks(ppq) == ticks {
			return d, true
		}
	}
	return 0, false
}

func ParseDuration(name string) (Duration, error) {
	for d, n := range durationNames {
		if n == name {
			return d, nil
		}
	}
	return 0, errors.Errorf("unknown duration %q", name)
}

func (d Duration) String() string {
	if n, ok := durationNames[d]; ok {
		return n
	}
	return fmt.Sprintf("Duration(%d)", uint8(d))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
