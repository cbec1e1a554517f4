package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// SentryMetrics records spans for the compile, export and play requests.
// A zero DSN leaves it disabled and every method a no-op.
type SentryMetrics struct {
	enabled bool
}

func NewSentryMetrics(dsn string) (*SentryMetrics, error) {
	if dsn == "" {
		return &SentryMetrics{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return &SentryMetrics{}, errors.Wrap(err, "could not init sentry")
	}
	return &SentryMetrics{enabled: true}, nil
}

func (m *SentryMetrics) Enabled() bool {
	return m.enabled
}

// RecordCompile records the shape of one compiled sequence.
func (m *SentryMetrics) RecordCompile(ctx context.Context, rests, notes, chords int, length time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "notation.compile")
	defer span.Finish()

	span.SetTag("events", fmt.Sprintf("%d", rests+notes+chords))
	span.SetData("rests", rests)
	span.SetData("notes", notes)
	span.SetData("chords", chords)
	span.SetData("length_ms", length.Milliseconds())
	span.Status = sentry.SpanStatusOK
}

func (m *SentryMetrics) RecordExport(ctx context.Context, size int, dropped int, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "export.midi")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("bytes", size)
	span.SetData("dropped_rests", dropped)
	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
}

func (m *SentryMetrics) RecordPlay(ctx context.Context, session string, length time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "playback.play")
	defer span.Finish()

	span.SetTag("session", session)
	span.SetData("length_ms", length.Milliseconds())
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Play: %s", session)
}

func (m *SentryMetrics) CaptureException(err error) {
	if !m.enabled || err == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits up to timeout for buffered events to be sent.
func (m *SentryMetrics) Flush(timeout time.Duration) {
	if !m.enabled {
		return
	}
	sentry.Flush(timeout)
}
