package chord

import (
	"bytes"
	"testing"

	"github.com/jsphweid/keytune/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func file(t *testing.T, tr smf.Track) *smf.SMF {
	tr.Close(0)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	require.NoError(t, s.Add(tr))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	res, err := smf.ReadFrom(&buf)
	require.NoError(t, err)
	return res
}

func TestCreateChordKey(t *testing.T) {
	notes := model.Notes{64, 48, 55}
	assert.Equal(t, "48-55-64", CreateChordKey(notes))
	assert.Equal(t, model.Notes{64, 48, 55}, notes)
	assert.Equal(t, "", CreateChordKey(nil))
}

func TestGroupsSimultaneousStarts(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 60, 64))
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Add(0, midi.NoteOff(0, 64))
	tr.Add(480, midi.NoteOn(0, 67, 80))
	tr.Add(240, midi.NoteOff(0, 67))

	chords, err := GetChords(file(t, tr))
	require.NoError(t, err)
	require.Len(t, chords, 2)

	assert := assert.New(t)
	assert.Equal(model.Notes{60, 64}, chords[0].Notes)
	assert.Equal(uint32(0), chords[0].AbsTicks)
	assert.Equal(uint32(480), chords[0].Ticks)
	assert.Equal(uint8(100), chords[0].Velocity)

	assert.Equal(model.Notes{67}, chords[1].Notes)
	assert.Equal(uint32(960), chords[1].AbsTicks)
	assert.Equal(uint32(240), chords[1].Ticks)
	// two quarters at 120 bpm
	assert.InDelta(1.0, chords[1].Offset, 1e-6)
}

func TestChordLastsUntilFirstRelease(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 48, 90))
	tr.Add(0, midi.NoteOn(0, 52, 90))
	tr.Add(120, midi.NoteOff(0, 52))
	tr.Add(360, midi.NoteOff(0, 48))

	chords, err := GetChords(file(t, tr))
	require.NoError(t, err)
	require.Len(t, chords, 1)
	assert.Equal(t, uint32(120), chords[0].Ticks)
}

func TestZeroVelocityNoteOnEndsNote(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 90))
	tr.Add(480, midi.NoteOn(0, 60, 0))
	tr.Add(0, midi.NoteOn(0, 60, 90))
	tr.Add(480, midi.NoteOff(0, 60))

	chords, err := GetChords(file(t, tr))
	require.NoError(t, err)
	require.Len(t, chords, 2)
	assert.Equal(t, uint32(480), chords[0].Ticks)
	assert.Equal(t, uint32(480), chords[1].AbsTicks)
	assert.Equal(t, uint32(480), chords[1].Ticks)
}

func TestEmptyFile(t *testing.T) {
	chords, err := GetChords(file(t, smf.Track{}))
	require.NoError(t, err)
	assert.Empty(t, chords)
}
