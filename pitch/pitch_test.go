package pitch

import (
	"testing"

	"github.com/jsphweid/keytune/model"
	"github.com/stretchr/testify/assert"
)

func TestKeyboardCoversAlphabet(t *testing.T) {
	assert.Len(t, Keyboard, 26)
	for c := 'a'; c <= 'z'; c++ {
		_, ok := Keyboard[c]
		assert.True(t, ok, string(c))
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := NewResolver(Keyboard, '\'', ',')
	assert := assert.New(t)

	lower, ok := r.Resolve('a')
	assert.True(ok)
	upper, ok := r.Resolve('A')
	assert.True(ok)
	assert.Equal(lower, upper)
	assert.Equal(60, lower.MIDI())

	for _, c := range []rune{'1', ' ', '(', '\'', 'é'} {
		_, ok := r.Resolve(c)
		assert.False(ok, string(c))
	}
}

func TestRegisters(t *testing.T) {
	r := NewResolver(nil, '\'', ',')
	cases := map[rune]string{
		'q': "C5", 'p': "E6", 'a': "C4", 'l': "D5", 'z': "C3", 'm': "B3", 't': "G5", 'c': "E3",
	}
	for c, want := range cases {
		got, ok := r.Resolve(c)
		assert.True(t, ok)
		assert.Equal(t, want, got.String())
	}
}

func TestResolveAtConsumesAccidental(t *testing.T) {
	r := NewResolver(Keyboard, '\'', ',')
	assert := assert.New(t)

	got, n := r.ResolveAt([]rune("f'"), 0)
	assert.Equal(2, n)
	assert.Equal(66, got.MIDI())

	got, n = r.ResolveAt([]rune("s,x"), 0)
	assert.Equal(2, n)
	assert.Equal(61, got.MIDI())

	got, n = r.ResolveAt([]rune("ab"), 0)
	assert.Equal(1, n)
	assert.Equal(model.NewPitch('C', 4), got)

	_, n = r.ResolveAt([]rune("'a"), 0)
	assert.Equal(0, n)
}

func TestAccidentalWithoutLowerMarker(t *testing.T) {
	r := NewResolver(Keyboard, '"', 0)
	assert.Equal(t, 1, r.Accidental('"'))
	assert.Equal(t, 0, r.Accidental(','))
	assert.Equal(t, 0, r.Accidental(0))
}
