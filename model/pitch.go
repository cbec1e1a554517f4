package model

import (
	"fmt"
)

// semitones above C for each natural letter class
var letterSemitones = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// Pitch is a letter class, an accidental offset in semitones and an octave.
// Octave numbering follows scientific pitch notation (C4 = MIDI 60).
type Pitch struct {
	Letter     byte
	Accidental int
	Octave     int
}

func NewPitch(letter byte, octave int) Pitch {
	return Pitch{Letter: letter, Octave: octave}
}

func (p Pitch) Valid() bool {
	_, ok := letterSemitones[p.Letter]
	return ok
}

// Transpose shifts the pitch by n semitones through its accidental.
func (p Pitch) Transpose(n int) Pitch {
	p.Accidental += n
	return p
}

// MIDI returns the MIDI key number. Results outside 0..127 are possible for
// extreme accidentals; callers writing to the wire clamp.
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + letterSemitones[p.Letter] + p.Accidental
}

func (p Pitch) String() string {
	acc := ""
	switch {
	case p.Accidental > 0:
		for i := 0; i < p.Accidental; i++ {
			acc += "#"
		}
	case p.Accidental < 0:
		for i := 0; i > p.Accidental; i-- {
			acc += "b"
		}
	}
	return fmt.Sprintf("%c%s%d", p.Letter, acc, p.Octave)
}

func (p Pitch) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
