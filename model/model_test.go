package model

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPitchMIDI(t *testing.T) {
	cases := []struct {
		pitch Pitch
		want  int
		name  string
	}{
		{NewPitch('C', 4), 60, "C4"},
		{NewPitch('A', 4), 69, "A4"},
		{NewPitch('C', 3), 48, "C3"},
		{NewPitch('E', 6), 88, "E6"},
		{NewPitch('F', 4).Transpose(1), 66, "F#4"},
		{NewPitch('D', 5).Transpose(-1), 73, "Db5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(c.want, c.pitch.MIDI())
			assert.Equal(c.name, c.pitch.String())
		})
	}
}

func TestDurationConversions(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint32(1920), Whole.Ticks(480))
	assert.Equal(uint32(960), Half.Ticks(480))
	assert.Equal(uint32(480), Quarter.Ticks(480))
	assert.Equal(uint32(60), ThirtySecond.Ticks(480))
	assert.Equal(4.0, Whole.QuarterUnits())
	assert.Equal(0.125, ThirtySecond.QuarterUnits())
	assert.Equal(0.5, Quarter.Seconds(120))
	assert.Equal(uint32(0), Duration(0).Ticks(480))

	for _, d := range AllDurations {
		back, ok := DurationFromTicks(d.Ticks(480), 480)
		assert.True(ok, d.String())
		assert.Equal(d, back)

		parsed, err := ParseDuration(d.String())
		assert.NoError(err)
		assert.Equal(d, parsed)
	}
}

func TestValidateTempo(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(ValidateTempo(120))
	assert.NoError(ValidateTempo(0.5))
	for _, bad := range []float64{0, -60, math.NaN(), math.Inf(1)} {
		err := ValidateTempo(bad)
		assert.Error(err)
		assert.True(errors.Is(err, ErrInvalidTempo))
	}
}

func TestSequenceLengthAndCounts(t *testing.T) {
	seq := Sequence{
		Note(NewPitch('C', 4), Quarter, 0.5),
		Rest(Half),
		Chord([]Pitch{NewPitch('C', 4), NewPitch('E', 4)}, Quarter, 1),
	}
	assert := assert.New(t)
	assert.Equal(2*time.Second, seq.Length(120))
	rests, notes, chords := seq.Counts()
	assert.Equal(1, rests)
	assert.Equal(1, notes)
	assert.Equal(1, chords)
}

func TestChordCopiesPitches(t *testing.T) {
	buf := []Pitch{NewPitch('C', 4)}
	e := Chord(buf, Quarter, 1)
	buf[0] = NewPitch('D', 4)
	assert.Equal(t, NewPitch('C', 4), e.Pitches[0])
}
