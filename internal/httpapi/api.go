package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"bauliver.org/internal/auth"
	"bauliver.org/internal/bot"
	"bauliver.org/internal/obs"
	"bauliver.org/internal/permit"
	"bauliver.org/internal/stream"
)

// ReadyProbe checks readiness, typically by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth    *auth.Service
	permits *permit.Service
	bot     *bot.Service
	events  *stream.Stream

	rateBurst  int
	ratePerSec int
}

// New wires the full route table.
func New(rp ReadyProbe, version string, authSvc *auth.Service, permitSvc *permit.Service, botSvc *bot.Service, events *stream.Stream) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		auth:       authSvc,
		permits:    permitSvc,
		bot:        botSvc,
		events:     events,
		rateBurst:  50,
		ratePerSec: 25,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/me", a.handleMe)
	a.mux.HandleFunc("/api/users/me", a.handleMe)

	a.mux.HandleFunc("/api/permits", a.handlePermitsCollection)
	a.mux.HandleFunc("/api/permits/", a.handlePermitResource)

	a.mux.HandleFunc("/bot/status", a.handleBotStatus)
	a.mux.HandleFunc("/bot/tasks", a.handleTasksCollection)
	a.mux.HandleFunc("/bot/tasks/", a.handleTaskResource)
	a.mux.HandleFunc("/bot/workflows", a.handleWorkflowsCollection)
	a.mux.HandleFunc("/bot/workflows/", a.handleWorkflowResource)
	a.mux.HandleFunc("/bot/events", a.Events)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Bauliver Backend API",
			"version": a.version,
		})
	})

	return a
}

// Handler returns the server handler with the full middleware chain applied.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        "bauliver-api",
		"version":        a.version,
		"uptime_seconds": int(time.Since(startedAt).Seconds()),
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// Events handles Server-Sent Events for task status transitions.
func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	if a.events == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.events.Subscribe(ctx)

	// Initial comment establishes the stream.
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := marshalEvent(event)
		if err != nil {
			continue
		}
		_, _ = w.Write(payload)
		flusher.Flush()
	}
}

func marshalEvent(event stream.TaskEvent) ([]byte, error) {
	data, err := jsonMarshal(event)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(data)+8)
	buf = append(buf, "data: "...)
	buf = append(buf, data...)
	buf = append(buf, "\n\n"...)
	return buf, nil
}

var startedAt = time.Now().UTC()
