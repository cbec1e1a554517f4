// Package notation compiles keyboard notation strings into event sequences.
//
// Letters become pitches, whitespace separates words, punctuation becomes
// rests and a pair of group markers turns the words between them into chords.
// Every note of a word shares one duration picked from the word's pitch
// count; every chord of a group shares one duration picked from the group's
// member count.
package notation

import (
	"unicode"

	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/pitch"
	"github.com/jsphweid/keytune/policy"
	"github.com/jsphweid/keytune/util"
	"golang.org/x/text/unicode/norm"
)

type state int

const (
	scanning state = iota
	inChordGroup
)

type Compiler struct {
	grammar  policy.Grammar
	resolver *pitch.Resolver
}

func NewCompiler(g policy.Grammar) *Compiler {
	return &Compiler{grammar: g, resolver: g.Resolver()}
}

// Compile is NewCompiler(g).Compile(text).
func Compile(text string, g policy.Grammar) model.Sequence {
	return NewCompiler(g).Compile(text)
}

// Compile never fails: characters that are neither pitches, rests nor
// markers are skipped, and a chord group left open at the end of the input
// is closed implicitly.
func (c *Compiler) Compile(text string) model.Sequence {
	if c.grammar.Normalize {
		text = norm.NFKC.String(text)
	}

	b := builder{Compiler: c}
	st := scanning
	var token []rune
	var members [][]rune

	endToken := func() {
		if len(token) == 0 {
			return
		}
		if st == inChordGroup {
			members = append(members, token)
		} else {
			b.word(token)
		}
		token = nil
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			endToken()
		case st == scanning && r == c.grammar.GroupOpen:
			endToken()
			st = inChordGroup
		case st == inChordGroup && r == c.grammar.GroupClose:
			endToken()
			b.group(members)
			members = nil
			st = scanning
		default:
			// stray close markers and nested open markers stay in the
			// token and are skipped by the character scan
			token = append(token, r)
		}
	}

	endToken()
	if st == inChordGroup {
		b.group(members)
	}
	return b.seq
}

// PitchCount is the unit length of a word: how many of its characters
// resolve to pitches. Rests and markers do not count.
func (c *Compiler) PitchCount(word []rune) int {
	var n int
	for _, r := range word {
		if _, ok := c.resolver.Resolve(r); ok {
			n++
		}
	}
	return n
}

// builder accumulates the events of a single Compile call.
type builder struct {
	*Compiler
	seq model.Sequence
}

func (b *builder) rest(r rune) bool {
	d, ok := b.grammar.RestFor(r)
	if ok {
		b.seq = append(b.seq, model.Rest(d))
	}
	return ok
}

func (b *builder) word(word []rune) {
	d := b.grammar.Durations.DurationFor(b.PitchCount(word))
	for i := 0; i < len(word); {
		if b.rest(word[i]) {
			i++
			continue
		}
		p, n := b.resolver.ResolveAt(word, i)
		if n == 0 {
			i++
			continue
		}
		b.seq = append(b.seq, model.Note(p, d, b.grammar.Velocity(word[i])))
		i += n
	}
}

func (b *builder) group(members [][]rune) {
	if len(members) == 0 {
		return
	}
	d := b.grammar.Durations.DurationFor(len(members))
	for _, m := range members {
		var pitches []model.Pitch
		var velocity float64
		flush := func() {
			if len(pitches) == 0 {
				return
			}
			b.seq = append(b.seq, model.Chord(util.Dedupe(pitches), d, velocity))
			pitches = pitches[:0]
			velocity = 0
		}

		for i := 0; i < len(m); {
			if _, ok := b.grammar.RestFor(m[i]); ok {
				flush()
				b.rest(m[i])
				i++
				continue
			}
			p, n := b.resolver.ResolveAt(m, i)
			if n == 0 {
				i++
				continue
			}
			pitches = append(pitches, p)
			velocity = util.Max(velocity, b.grammar.Velocity(m[i]))
			i += n
		}
		flush()
	}
}
