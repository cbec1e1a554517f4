package model

type Notes = []uint8

// TimedChord is a set of keys sounding together, decoded from a MIDI file.
type TimedChord struct {
	AbsTicks uint32
	Offset   float64 // seconds
	Notes    Notes
	Ticks    uint32 // until the first key of the group is released
	Velocity uint8
}
