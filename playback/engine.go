package playback

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/keytune/model"
)

// Engine is the sound engine handle the scheduler drives.
type Engine interface {
	// Schedule registers one pitch to sound at offset at for dur.
	Schedule(at time.Duration, p model.Pitch, dur time.Duration, velocity float64)
	// Start starts the engine clock; offsets are relative to this call.
	Start()
	// Reset cancels everything still pending, silences sounding notes and
	// rewinds the clock. It is safe to call with nothing pending.
	Reset()
}

// LogEngine plays nothing and logs every note as its time comes.
type LogEngine struct {
	clock  *Clock
	logger *log.Logger
}

func NewLogEngine(logger *log.Logger) *LogEngine {
	return &LogEngine{clock: NewClock(), logger: logger}
}

func (e *LogEngine) Schedule(at time.Duration, p model.Pitch, dur time.Duration, velocity float64) {
	e.clock.At(at, func() {
		e.logger.Info("note", "pitch", p, "at", at.Round(time.Millisecond), "dur", dur.Round(time.Millisecond), "velocity", velocity)
	})
}

func (e *LogEngine) Start() {
	e.clock.Start()
}

func (e *LogEngine) Reset() {
	e.clock.Reset()
}
