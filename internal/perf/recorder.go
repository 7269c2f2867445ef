package perf

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// AppendStore persists one performance event.
type AppendStore interface {
	Append(ctx context.Context, event Event) error
}

// Recorder timestamps request lifecycles. Like the audit recorder it is
// best effort: a failed append goes to the operational log, never to the
// response.
type Recorder struct {
	store  AppendStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(store AppendStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger, now: time.Now}
}

// Middleware observes every request. The completion hook runs on the defer
// path, so it fires for panicking handlers too, before the outer recoverer
// writes its response.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	if rec == nil || rec.store == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := rec.now()
		defer rec.complete(r, start)
		next.ServeHTTP(w, r)
	})
}

// complete classifies and appends the page-load event. It must never
// throw: its own panics and errors stop here.
func (rec *Recorder) complete(r *http.Request, start time.Time) {
	defer func() {
		if p := recover(); p != nil {
			rec.logger.Error("performance hook panic", slog.Any("panic", p))
		}
	}()

	finished := rec.now()
	duration := finished.Sub(start)
	ctx := r.Context()
	event := Event{
		EventType:  EventPageLoad,
		Status:     Classify(duration),
		Route:      routePattern(r),
		Duration:   duration,
		StartedAt:  start.UTC(),
		FinishedAt: finished.UTC(),
	}
	if actor, ok := shared.ActorFromContext(ctx); ok {
		event.UserID = actor.ID
	}
	meta := shared.RequestMetaFromContext(ctx)
	event.IP = meta.IP
	event.UserAgent = meta.UserAgent

	// The request context may already be cancelled on the defer path.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := rec.store.Append(appendCtx, event); err != nil {
		rec.logger.Error("performance append failed",
			slog.String("route", event.Route),
			slog.String("status", event.Status),
			slog.Any("error", err))
	}
}

// Heartbeat appends an uptime event; used by the worker's scheduled task.
func (rec *Recorder) Heartbeat(ctx context.Context, status string) {
	if rec == nil || rec.store == nil {
		return
	}
	eventType := EventUptime
	if status == StatusOffline {
		eventType = EventDowntime
	}
	now := rec.now().UTC()
	event := Event{EventType: eventType, Status: status, StartedAt: now, FinishedAt: now}
	if err := rec.store.Append(ctx, event); err != nil {
		rec.logger.Error("heartbeat append failed", slog.Any("error", err))
	}
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
