// Package chord reads the notes of a MIDI file back as timed chords.
package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// CreateChordKey renders notes as an ascending "48-52-55" key. notes is not
// modified.
func CreateChordKey(notes model.Notes) string {
	sorted := append(model.Notes(nil), notes...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

type reducedEvent struct {
	absTicks  int64
	isNoteOff bool
	note      uint8
	velocity  uint8
}

func reduce(s *smf.SMF) []reducedEvent {
	var res []reducedEvent
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			msg := midi.Message(event.Message)
			var channel, key, velocity uint8
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				res = append(res, reducedEvent{absTicks: absTicks, note: key, velocity: velocity})
			case msg.GetNoteEnd(&channel, &key):
				res = append(res, reducedEvent{absTicks: absTicks, isNoteOff: true, note: key})
			}
		}
	}

	// prioritize smaller offset values then note off
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].absTicks != res[j].absTicks {
			return res[i].absTicks < res[j].absTicks
		}
		return res[i].isNoteOff && !res[j].isNoteOff
	})
	return res
}

// GetChords groups every note that starts on the same tick into one chord.
// A chord lasts until the first of its keys is released.
func GetChords(s *smf.SMF) (chords []model.TimedChord, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			chords, err = nil, errors.Errorf("could not read chords: %v", rec)
		}
	}()

	byTick := make(map[int64]int)
	released := make(map[int]bool)
	pressed := make(map[uint8][]int)

	for _, evt := range reduce(s) {
		if evt.isNoteOff {
			for _, i := range pressed[evt.note] {
				if !released[i] {
					released[i] = true
					chords[i].Ticks = uint32(evt.absTicks) - chords[i].AbsTicks
				}
			}
			delete(pressed, evt.note)
			continue
		}

		i, ok := byTick[evt.absTicks]
		if !ok {
			i = len(chords)
			byTick[evt.absTicks] = i
			chords = append(chords, model.TimedChord{
				AbsTicks: uint32(evt.absTicks),
				Offset:   float64(s.TimeAt(evt.absTicks)) / 1e6,
			})
		}
		chords[i].Notes = util.Dedupe(append(chords[i].Notes, evt.note))
		chords[i].Velocity = util.Max(chords[i].Velocity, evt.velocity)
		pressed[evt.note] = append(pressed[evt.note], i)
	}
	return chords, nil
}
