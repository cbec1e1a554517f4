// Package playback turns an event sequence into timed calls on a sound engine.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jsphweid/keytune/model"
)

// Session is one run of Play.
type Session struct {
	ID     string
	Events int
	Tempo  float64
	Length time.Duration

	done chan struct{}
}

// Done is closed when the session finishes or is stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Scheduler owns one engine and allows a single active session on it.
type Scheduler struct {
	engine Engine
	logger *log.Logger

	mu     sync.Mutex
	active *Session
	timer  *time.Timer
}

func NewScheduler(engine Engine, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{engine: engine, logger: logger}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Play cancels whatever is playing, schedules seq at tempoBPM and starts the
// engine. Cancelling ctx stops the session.
func (s *Scheduler) Play(ctx context.Context, seq model.Sequence, tempoBPM float64) (*Session, error) {
	return s.PlayAs(ctx, uuid.NewString(), seq, tempoBPM)
}

// PlayAs is Play with a caller supplied session id.
func (s *Scheduler) PlayAs(ctx context.Context, id string, seq model.Sequence, tempoBPM float64) (*Session, error) {
	if err := model.ValidateTempo(tempoBPM); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	// accumulate in seconds so long sequences do not drift from rounding
	var current float64
	for _, e := range seq {
		d := e.Duration.Seconds(tempoBPM)
		if !e.IsRest() {
			at, dur := seconds(current), seconds(d)
			for _, p := range e.Pitches {
				s.engine.Schedule(at, p, dur, e.Velocity)
			}
		}
		current += d
	}

	sess := &Session{
		ID:     id,
		Events: len(seq),
		Tempo:  tempoBPM,
		Length: seconds(current),
		done:   make(chan struct{}),
	}
	s.engine.Start()
	s.active = sess
	s.timer = time.AfterFunc(sess.Length, func() {
		s.finish(sess, "finished")
	})
	s.logger.Info("playing", "session", sess.ID, "events", sess.Events, "tempo", tempoBPM, "length", sess.Length.Round(time.Millisecond))

	go func() {
		select {
		case <-ctx.Done():
			s.finish(sess, "cancelled")
		case <-sess.done:
		}
	}()
	return sess, nil
}

// Stop cancels the active session and resets the engine clock.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Active returns the running session, nil if nothing plays.
func (s *Scheduler) Active() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Wait blocks until the active session ends or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	sess := s.Active()
	if sess == nil {
		return nil
	}
	select {
	case <-sess.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) stopLocked() {
	s.engine.Reset()
	s.endLocked("stopped")
}

func (s *Scheduler) finish(sess *Session, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != sess {
		return
	}
	if reason != "finished" {
		s.engine.Reset()
	}
	s.endLocked(reason)
}

func (s *Scheduler) endLocked(reason string) {
	if s.active == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	close(s.active.done)
	s.logger.Debug(reason, "session", s.active.ID)
	s.active = nil
}
