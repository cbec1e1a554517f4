// Package pitch maps single keyboard characters onto pitches.
package pitch

import (
	"unicode"

	"github.com/jsphweid/keytune/model"
)

// Table assigns a natural pitch to each lowercase letter.
type Table map[rune]model.Pitch

func p(letter byte, octave int) model.Pitch {
	return model.NewPitch(letter, octave)
}

// Keyboard mirrors a three-row qwerty layout: the home row sits around C4,
// the row above it around C5 and the row below around C3.
var Keyboard = Table{
	'q': p('C', 5), 'w': p('D', 5), 'e': p('E', 5), 'r': p('F', 5), 't': p('G', 5),
	'y': p('A', 5), 'u': p('B', 5), 'i': p('C', 6), 'o': p('D', 6), 'p': p('E', 6),

	'a': p('C', 4), 's': p('D', 4), 'd': p('E', 4), 'f': p('F', 4), 'g': p('G', 4),
	'h': p('A', 4), 'j': p('B', 4), 'k': p('C', 5), 'l': p('D', 5),

	'z': p('C', 3), 'x': p('D', 3), 'c': p('E', 3), 'v': p('F', 3), 'b': p('G', 3),
	'n': p('A', 3), 'm': p('B', 3),
}

type Resolver struct {
	table Table
	raise rune
	lower rune
}

func NewResolver(table Table, raise, lower rune) *Resolver {
	if table == nil {
		table = Keyboard
	}
	return &Resolver{table: table, raise: raise, lower: lower}
}

// Resolve looks c up case-insensitively. The second result is false for any
// character outside the table.
func (r *Resolver) Resolve(c rune) (model.Pitch, bool) {
	res, ok := r.table[unicode.ToLower(c)]
	return res, ok
}

// Accidental reports the semitone shift a marker applies, 0 if c is not one.
func (r *Resolver) Accidental(c rune) int {
	switch {
	case r.raise != 0 && c == r.raise:
		return 1
	case r.lower != 0 && c == r.lower:
		return -1
	}
	return 0
}

// ResolveAt resolves text[i] and applies a trailing accidental marker. It
// returns how many runes were consumed, 0 when text[i] is not a pitch.
func (r *Resolver) ResolveAt(text []rune, i int) (model.Pitch, int) {
	res, ok := r.Resolve(text[i])
	if !ok {
		return model.Pitch{}, 0
	}
	if i+1 < len(text) {
		if shift := r.Accidental(text[i+1]); shift != 0 {
			return res.Transpose(shift), 2
		}
	}
	return res, 1
}
