// Package midi writes keytune sequences as standard MIDI files and plays them
// on real MIDI output ports.
package midi

import (
	"bytes"
	"math"

	"github.com/jsphweid/keytune/constants"
	"github.com/jsphweid/keytune/export"
	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/util"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const TrackName = "keytune"

var _ export.Encoder = (*Encoder)(nil)

type note struct {
	keys     []uint8
	wait     uint32
	ticks    uint32
	velocity uint8
}

// Encoder collects notes on a single track, channel 0, and renders them as
// an SMF file at constants.PPQ ticks per quarter.
type Encoder struct {
	tempo float64
	notes []note
}

func NewEncoder() *Encoder {
	return &Encoder{tempo: 120}
}

func (e *Encoder) SetTempo(bpm float64) {
	e.tempo = bpm
}

func (e *Encoder) AddNote(pitches []model.Pitch, duration string, wait []string, velocity float64) {
	var waitTicks uint32
	for _, w := range wait {
		waitTicks += DurationTicks(w)
	}
	keys := make([]uint8, 0, len(pitches))
	for _, p := range pitches {
		keys = append(keys, Key(p))
	}
	e.notes = append(e.notes, note{
		keys:     util.Dedupe(keys),
		wait:     waitTicks,
		ticks:    DurationTicks(duration),
		velocity: Velocity(velocity),
	})
}

func (e *Encoder) Bytes() ([]byte, error) {
	if err := model.ValidateTempo(e.tempo); err != nil {
		return nil, err
	}

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(TrackName))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(e.tempo))

	for _, n := range e.notes {
		delta := n.wait
		for _, k := range n.keys {
			tr.Add(delta, gomidi.NoteOn(0, k, n.velocity))
			delta = 0
		}
		delta = n.ticks
		for _, k := range n.keys {
			tr.Add(delta, gomidi.NoteOff(0, k))
			delta = 0
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.PPQ)
	if err := s.Add(tr); err != nil {
		return nil, errors.Wrap(err, "could not add track")
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "could not write midi file")
	}
	return buf.Bytes(), nil
}

// DurationTicks converts an encoder duration code to ticks. Unknown codes
// are treated as a quarter note.
func DurationTicks(code string) uint32 {
	d, ok := export.ParseCode(code)
	if !ok {
		d = model.Quarter
	}
	return d.Ticks(constants.PPQ)
}

// Velocity scales an intensity in (0, 1] to a MIDI velocity. 0 would be read
// as a note off, so the result is never below 1.
func Velocity(v float64) uint8 {
	if math.IsNaN(v) {
		return 1
	}
	return uint8(util.Clamp(math.Round(v*127), 1, 127))
}

// Key is the MIDI key of p, clamped to the valid range.
func Key(p model.Pitch) uint8 {
	return uint8(util.Clamp(p.MIDI(), 0, 127))
}
