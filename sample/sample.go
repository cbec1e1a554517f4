// Package sample cuts an excerpt out of a MIDI file.
package sample

import (
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type timedEvent struct {
	abs uint64
	msg smf.Message
}

// Create returns the part of mf starting at ticksOffset, shifted to start at
// tick 0. At most maxNotes notes are started in every track; maxNotes <= 0
// keeps them all. Non-note events before the offset, such as tempo and
// meter, are kept at tick 0. Notes already sounding at the offset are left
// out.
func Create(mf *smf.SMF, ticksOffset uint64, maxNotes int) (*smf.SMF, error) {
	res := smf.New()
	res.TimeFormat = mf.TimeFormat

	for _, track := range mf.Tracks {
		var kept []timedEvent
		var absTicks uint64
		var started int
		open := make(map[[2]uint8]bool)

		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			msg := midi.Message(evt.Message)
			var channel, key, velocity uint8
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				if absTicks < ticksOffset || (maxNotes > 0 && started >= maxNotes) {
					continue
				}
				started++
				open[[2]uint8{channel, key}] = true
				kept = append(kept, timedEvent{absTicks - ticksOffset, evt.Message})
			case msg.GetNoteEnd(&channel, &key):
				if !open[[2]uint8{channel, key}] {
					continue
				}
				delete(open, [2]uint8{channel, key})
				kept = append(kept, timedEvent{absTicks - ticksOffset, evt.Message})
			case evt.Message.Is(smf.MetaEndOfTrackMsg):
			default:
				var at uint64
				if absTicks > ticksOffset {
					at = absTicks - ticksOffset
				}
				kept = append(kept, timedEvent{at, evt.Message})
			}
		}

		var newTrack smf.Track
		var last uint64
		for _, e := range kept {
			newTrack.Add(uint32(e.abs-last), e.msg)
			last = e.abs
		}
		newTrack.Close(0)
		if err := res.Add(newTrack); err != nil {
			return nil, errors.Wrap(err, "could not add excerpt track")
		}
	}

	return res, nil
}
