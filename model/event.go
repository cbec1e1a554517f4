package model

import (
	"time"
)

type Kind uint8

const (
	RestKind Kind = iota
	NoteKind
	ChordKind
)

func (k Kind) String() string {
	switch k {
	case NoteKind:
		return "note"
	case ChordKind:
		return "chord"
	default:
		return "rest"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is one rest, single note or chord. A note carries exactly one pitch,
// a chord one or more, a rest none.
type Event struct {
	Kind     Kind     `json:"kind"`
	Pitches  []Pitch  `json:"pitches,omitempty"`
	Duration Duration `json:"duration"`
	Velocity float64  `json:"velocity,omitempty"`
}

func Rest(d Duration) Event {
	return Event{Kind: RestKind, Duration: d}
}

func Note(p Pitch, d Duration, velocity float64) Event {
	return Event{Kind: NoteKind, Pitches: []Pitch{p}, Duration: d, Velocity: velocity}
}

// Chord copies pitches so the caller can keep reusing its buffer.
func Chord(pitches []Pitch, d Duration, velocity float64) Event {
	ps := make([]Pitch, len(pitches))
	copy(ps, pitches)
	return Event{Kind: ChordKind, Pitches: ps, Duration: d, Velocity: velocity}
}

func (e Event) IsRest() bool {
	return e.Kind == RestKind
}

// Sequence is the ordered output of one compile pass. Consumers read it and
// never write back into it.
type Sequence []Event

// Length is the total playing time at tempoBPM, rests included.
func (s Sequence) Length(tempoBPM float64) time.Duration {
	var secs float64
	for _, e := range s {
		secs += e.Duration.Seconds(tempoBPM)
	}
	return time.Duration(secs * float64(time.Second))
}

// Counts returns how many rests, notes and chords the sequence holds.
func (s Sequence) Counts() (rests, notes, chords int) {
	for _, e := range s {
		switch e.Kind {
		case RestKind:
			rests++
		case NoteKind:
			notes++
		case ChordKind:
			chords++
		}
	}
	return
}
