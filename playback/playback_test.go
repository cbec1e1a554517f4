package playback

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/notation"
	"github.com/jsphweid/keytune/policy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	At       time.Duration
	Pitch    string
	Dur      time.Duration
	Velocity float64
}

// recordingEngine keeps every Schedule call and counts Start/Reset.
type recordingEngine struct {
	mu     sync.Mutex
	calls  []call
	ops    []string
	starts int
	resets int
}

func (e *recordingEngine) Schedule(at time.Duration, p model.Pitch, dur time.Duration, velocity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call{at, p.String(), dur, velocity})
	e.ops = append(e.ops, "schedule")
}

func (e *recordingEngine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	e.ops = append(e.ops, "start")
}

func (e *recordingEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resets++
	e.calls = nil
	e.ops = append(e.ops, "reset")
}

// firingEngine runs on a real Clock and records pitches as they sound.
type firingEngine struct {
	clock *Clock
	mu    sync.Mutex
	fired []string
}

func (e *firingEngine) Schedule(at time.Duration, p model.Pitch, dur time.Duration, velocity float64) {
	e.clock.At(at, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.fired = append(e.fired, p.String())
	})
}

func (e *firingEngine) Start() { e.clock.Start() }
func (e *firingEngine) Reset() { e.clock.Reset() }

func (e *firingEngine) Fired() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.fired...)
}

func quiet() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel)
	return l
}

func compile(text string) model.Sequence {
	return notation.Compile(text, policy.Canonical())
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestPlaySchedulesNotesAtRunningTime(t *testing.T) {
	engine := &recordingEngine{}
	s := NewScheduler(engine, quiet())
	sess, err := s.Play(context.Background(), compile("cat"), 120)
	require.NoError(t, err)
	defer s.Stop()

	assert := assert.New(t)
	assert.Equal(ms(1500), sess.Length)
	assert.Equal([]call{
		{0, "E3", ms(500), 0.5},
		{ms(500), "C4", ms(500), 0.5},
		{ms(1000), "G5", ms(500), 0.5},
	}, engine.calls)
	assert.Equal([]string{"reset", "schedule", "schedule", "schedule", "start"}, engine.ops)
}

func TestRestsAdvanceWithoutCalls(t *testing.T) {
	engine := &recordingEngine{}
	s := NewScheduler(engine, quiet())
	sess, err := s.Play(context.Background(), compile("a.b"), 120)
	require.NoError(t, err)
	defer s.Stop()

	// half, quarter rest, half
	assert.Equal(t, ms(2500), sess.Length)
	require.Len(t, engine.calls, 2)
	assert.Equal(t, time.Duration(0), engine.calls[0].At)
	assert.Equal(t, ms(1500), engine.calls[1].At)
}

func TestChordSchedulesEveryPitchAtOnce(t *testing.T) {
	engine := &recordingEngine{}
	s := NewScheduler(engine, quiet())
	_, err := s.Play(context.Background(), compile("(cat dog)"), 100)
	require.NoError(t, err)
	defer s.Stop()

	require.Len(t, engine.calls, 6)
	half := ms(1200)
	for i, c := range engine.calls {
		assert.Equal(t, half, c.Dur)
		if i < 3 {
			assert.Equal(t, time.Duration(0), c.At)
		} else {
			assert.Equal(t, half, c.At)
		}
	}
}

func TestInvalidTempoIsRejected(t *testing.T) {
	engine := &recordingEngine{}
	s := NewScheduler(engine, quiet())
	for _, tempo := range []float64{0, -120} {
		_, err := s.Play(context.Background(), compile("cat"), tempo)
		assert.True(t, errors.Is(err, model.ErrInvalidTempo))
	}
	assert.Empty(t, engine.ops)
	assert.Nil(t, s.Active())
}

func TestSecondPlayCancelsFirst(t *testing.T) {
	engine := &firingEngine{clock: NewClock()}
	s := NewScheduler(engine, quiet())

	// the first sequence opens with a long rest so nothing of it sounds
	// before it is replaced
	first, err := s.Play(context.Background(), compile("- asdf"), 60)
	require.NoError(t, err)
	second, err := s.Play(context.Background(), compile("q"), 6000)
	require.NoError(t, err)

	select {
	case <-first.Done():
	default:
		t.Fatal("first session should be done once replaced")
	}
	assert.Equal(t, second, s.Active())

	require.Eventually(t, func() bool {
		return len(engine.Fired()) == 1
	}, time.Second, ms(5))
	require.NoError(t, s.Wait(context.Background()))
	time.Sleep(ms(50))
	assert.Equal(t, []string{"C5"}, engine.Fired())
}

func TestStopWithNothingScheduled(t *testing.T) {
	engine := &recordingEngine{}
	s := NewScheduler(engine, quiet())
	s.Stop()
	s.Stop()
	assert.Nil(t, s.Active())
	assert.Equal(t, 2, engine.resets)
	assert.NoError(t, s.Wait(context.Background()))
}

func TestStopCancelsPendingCallbacks(t *testing.T) {
	engine := &firingEngine{clock: NewClock()}
	s := NewScheduler(engine, quiet())
	sess, err := s.Play(context.Background(), compile(". a s d"), 600)
	require.NoError(t, err)
	s.Stop()

	<-sess.Done()
	time.Sleep(ms(300))
	assert.Empty(t, engine.Fired())
	assert.Equal(t, 0, engine.clock.pending())
	assert.Equal(t, time.Duration(0), engine.clock.elapsed())
}

func TestSessionFinishes(t *testing.T) {
	engine := &firingEngine{clock: NewClock()}
	s := NewScheduler(engine, quiet())
	sess, err := s.Play(context.Background(), compile("asdf"), 3000)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Nil(t, s.Active())
	require.Eventually(t, func() bool {
		return len(engine.Fired()) == 4
	}, time.Second, ms(5))
	assert.Equal(t, []string{"C4", "D4", "E4", "F4"}, engine.Fired())
	// four eighths at 3000 bpm
	assert.InDelta(t, float64(ms(40)), float64(sess.Length), float64(time.Microsecond))
}

func TestContextCancelStopsSession(t *testing.T) {
	engine := &firingEngine{clock: NewClock()}
	s := NewScheduler(engine, quiet())
	ctx, cancel := context.WithCancel(context.Background())
	sess, err := s.Play(ctx, compile("- a"), 60)
	require.NoError(t, err)
	cancel()

	select {
	case <-sess.Done():
	case <-time.After(time.Second):
		t.Fatal("session not stopped after cancel")
	}
	assert.Empty(t, engine.Fired())
}

func TestClockOrdersEqualOffsetsByRegistration(t *testing.T) {
	c := NewClock()
	var mu sync.Mutex
	var got []int
	add := func(at time.Duration, n int) {
		c.At(at, func() {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, n)
		})
	}
	add(ms(20), 3)
	add(0, 1)
	add(ms(20), 4)
	add(0, 2)
	c.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 4
	}, time.Second, ms(5))
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestLogEngineLogsScheduledNotes(t *testing.T) {
	var buf safeBuffer
	logger := log.New(&buf)
	e := NewLogEngine(logger)
	e.Schedule(0, model.NewPitch('C', 4), ms(10), 1)
	e.Start()
	require.Eventually(t, func() bool {
		return buf.Len() > 0
	}, time.Second, ms(5))
	assert.Contains(t, buf.String(), "C4")
	e.Reset()
}

type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *safeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
