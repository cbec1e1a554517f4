// Package export walks an event sequence and feeds a MIDI file encoder.
package export

import (
	"github.com/jsphweid/keytune/model"
)

const DefaultVelocity = 0.8

// Encoder builds the bytes of a MIDI file. Rests never reach it as events:
// each note carries the rest codes that precede it as wait time.
type Encoder interface {
	SetTempo(bpm float64)
	AddNote(pitches []model.Pitch, duration string, wait []string, velocity float64)
	Bytes() ([]byte, error)
}

var codes = map[model.Duration]string{
	model.Whole:        "1n",
	model.Half:         "2n",
	model.Quarter:      "4n",
	model.Eighth:       "8n",
	model.Sixteenth:    "16n",
	model.ThirtySecond: "32n",
}

// Code returns the encoder duration code of d, "" for an invalid class.
func Code(d model.Duration) string {
	return codes[d]
}

// ParseCode is the inverse of Code.
func ParseCode(code string) (model.Duration, bool) {
	for d, c := range codes {
		if c == code {
			return d, true
		}
	}
	return 0, false
}

// Export hands every note and chord of seq to enc and returns the encoded
// file. Rests at the very end have no following note to carry them and are
// dropped.
func Export(seq model.Sequence, tempoBPM float64, enc Encoder) ([]byte, error) {
	if err := model.ValidateTempo(tempoBPM); err != nil {
		return nil, err
	}
	enc.SetTempo(tempoBPM)

	var accumulatedRest []string
	for _, e := range seq {
		if e.IsRest() {
			accumulatedRest = append(accumulatedRest, Code(e.Duration))
			continue
		}
		velocity := e.Velocity
		if velocity <= 0 {
			velocity = DefaultVelocity
		}
		enc.AddNote(e.Pitches, Code(e.Duration), accumulatedRest, velocity)
		accumulatedRest = nil
	}
	return enc.Bytes()
}

// TrailingRests counts the rests Export will drop.
func TrailingRests(seq model.Sequence) int {
	var n int
	for i := len(seq) - 1; i >= 0 && seq[i].IsRest(); i-- {
		n++
	}
	return n
}
