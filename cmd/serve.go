package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/log"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/keytune/constants"
	"github.com/jsphweid/keytune/export"
	"github.com/jsphweid/keytune/metrics"
	"github.com/jsphweid/keytune/midi"
	"github.com/jsphweid/keytune/model"
	"github.com/jsphweid/keytune/notation"
	"github.com/jsphweid/keytune/playback"
	"github.com/jsphweid/keytune/policy"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

const playDebounce = 150 * time.Millisecond

var errBadRequest = errors.New("bad request")

var addr string

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default $KEYTUNE_ADDR or :8080)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the compile, export and play API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

// Server holds what the HTTP handlers share. Play requests arriving in a
// burst collapse into the last one.
type Server struct {
	grammar   policy.Grammar
	scheduler *playback.Scheduler
	metrics   *metrics.SentryMetrics
	logger    *log.Logger
	debounced func(func())
}

func NewServer(g policy.Grammar, engine playback.Engine, m *metrics.SentryMetrics, logger *log.Logger, after time.Duration) *Server {
	return &Server{
		grammar:   g,
		scheduler: playback.NewScheduler(engine, logger),
		metrics:   m,
		logger:    logger,
		debounced: debounce.New(after),
	}
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/compile", s.HandleCompile).Methods("POST")
	router.HandleFunc("/export", s.HandleExport).Methods("POST")
	router.HandleFunc("/play", s.HandlePlay).Methods("POST")
	router.HandleFunc("/stop", s.HandleStop).Methods("POST")
	return cors.Default().Handler(router)
}

func (s *Server) readRequest(r *http.Request) (model.Sequence, float64, error) {
	var input model.CompileRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return nil, 0, errors.Wrapf(errBadRequest, "could not decode request body: %v", err)
	}
	if err := model.ValidateTempo(input.Tempo); err != nil {
		return nil, 0, err
	}
	return notation.Compile(input.Text, s.grammar), input.Tempo, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, model.ErrInvalidTempo) || errors.Is(err, errBadRequest) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error("request failed", "err", err)
		s.metrics.CaptureException(err)
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) HandleCompile(w http.ResponseWriter, r *http.Request) {
	seq, tempoBPM, err := s.readRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := compileResponse(seq, tempoBPM)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.RecordCompile(r.Context(), res.Rests, res.Notes, res.Chords, seq.Length(tempoBPM))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	seq, tempoBPM, err := s.readRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	dropped := export.TrailingRests(seq)
	b, err := export.Export(seq, tempoBPM, midi.NewEncoder())
	s.metrics.RecordExport(r.Context(), len(b), dropped, err == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="`+constants.DefaultExportFile+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// HandlePlay answers right away with the id the session will run under.
func (s *Server) HandlePlay(w http.ResponseWriter, r *http.Request) {
	seq, tempoBPM, err := s.readRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := uuid.NewString()
	s.debounced(func() {
		if _, err := s.scheduler.PlayAs(context.Background(), id, seq, tempoBPM); err != nil {
			s.logger.Error("could not play", "session", id, "err", err)
		}
	})
	length := seq.Length(tempoBPM)
	s.metrics.RecordPlay(r.Context(), id, length)
	writeJSON(w, http.StatusAccepted, model.PlayResponse{
		Session:  id,
		Events:   len(seq),
		LengthMs: length.Milliseconds(),
	})
}

// HandleStop also drops a play request still waiting out the debounce.
func (s *Server) HandleStop(w http.ResponseWriter, r *http.Request) {
	s.debounced(func() {})
	s.scheduler.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func serve(ctx context.Context) error {
	logger := log.FromContext(ctx)
	g, err := loadGrammar()
	if err != nil {
		return err
	}
	m, err := metrics.NewSentryMetrics(constants.GetSentryDSN())
	if err != nil {
		logger.Warn("sentry disabled", "err", err)
	}
	defer m.Flush(2 * time.Second)

	engine, release, err := openEngine(logger)
	if err != nil {
		return err
	}
	defer release()

	s := NewServer(g, engine, m, logger, playDebounce)
	defer s.scheduler.Stop()

	listen := addr
	if listen == "" {
		listen = constants.GetServeAddr()
	}
	srv := &http.Server{
		Addr:    listen,
		Handler: sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(s.Router()),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", listen, "grammar", g.Name, "dry-run", dryRun)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server failed")
	}
	return nil
}
