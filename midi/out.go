package midi

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/playback"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ErrNoOutPort = errors.New("no midi output port")

var _ playback.Engine = (*OutEngine)(nil)

// OutEngine sends scheduled notes to a MIDI output as their time comes.
type OutEngine struct {
	clock  *playback.Clock
	send   func(gomidi.Message) error
	logger *log.Logger
	port   drivers.Out

	mu       sync.Mutex
	sounding map[uint8]uint64
	strikes  uint64
}

func NewOutEngine(send func(gomidi.Message) error, logger *log.Logger) *OutEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &OutEngine{
		clock:    playback.NewClock(),
		send:     send,
		logger:   logger,
		sounding: make(map[uint8]uint64),
	}
}

// OpenOutEngine opens the output port whose name contains portName, or the
// first port when portName is empty.
func OpenOutEngine(portName string, logger *log.Logger) (*OutEngine, error) {
	var out drivers.Out
	var err error
	if portName == "" {
		out, err = gomidi.OutPort(0)
	} else {
		out, err = gomidi.FindOutPort(portName)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrNoOutPort, "%q: %v", portName, err)
	}

	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", out)
	}
	e := NewOutEngine(send, logger)
	e.port = out
	e.logger.Debug("opened midi output", "port", out.String())
	return e, nil
}

func ListOutPorts() []string {
	var res []string
	for _, p := range gomidi.GetOutPorts() {
		res = append(res, p.String())
	}
	return res
}

func (e *OutEngine) Schedule(at time.Duration, p model.Pitch, dur time.Duration, velocity float64) {
	key, vel := Key(p), Velocity(velocity)
	var strike uint64
	e.clock.At(at, func() {
		strike = e.noteOn(key, vel)
	})
	e.clock.At(at+dur, func() {
		e.noteOff(key, strike)
	})
}

func (e *OutEngine) Start() {
	e.clock.Start()
}

// Reset drops pending notes and releases every key still sounding.
func (e *OutEngine) Reset() {
	e.clock.Reset()

	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.sounding {
		e.write(gomidi.NoteOff(0, key))
	}
	e.sounding = make(map[uint8]uint64)
}

// Close resets the engine and closes its port, if it opened one.
func (e *OutEngine) Close() error {
	e.Reset()
	if e.port == nil {
		return nil
	}
	return e.port.Close()
}

func (e *OutEngine) noteOn(key, vel uint8) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sounding[key]; ok {
		e.write(gomidi.NoteOff(0, key))
	}
	e.strikes++
	e.sounding[key] = e.strikes
	e.write(gomidi.NoteOn(0, key, vel))
	return e.strikes
}

// noteOff only releases key if it has not been struck again since.
func (e *OutEngine) noteOff(key uint8, strike uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sounding[key] != strike {
		return
	}
	delete(e.sounding, key)
	e.write(gomidi.NoteOff(0, key))
}

func (e *OutEngine) write(msg gomidi.Message) {
	if err := e.send(msg); err != nil {
		e.logger.Warn("could not send midi message", "msg", msg.String(), "err", err)
	}
}
