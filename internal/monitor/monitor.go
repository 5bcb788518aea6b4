// Package monitor serves stored runs and the progress of running
// simulations over HTTP.
package monitor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"golang.org/x/time/rate"

	"github.com/san-kum/nbody/internal/storage"
)

// Monitor exposes a run store and progress bars through a JSON API.
type Monitor struct {
	store  *storage.Store
	logger *slog.Logger

	progressLock sync.Mutex
	progress     map[string]*Progress

	origins         []string
	profileDuration time.Duration
	profileLimiter  *rate.Limiter
	streamInterval  time.Duration
}

func New(store *storage.Store) *Monitor {
	return &Monitor{
		store:           store,
		logger:          slog.Default().With("component", "monitor"),
		progress:        make(map[string]*Progress),
		profileDuration: time.Second,
		profileLimiter:  newProfileLimiter(),
		streamInterval:  time.Second,
	}
}

// WithOrigins allows cross-origin reads and websocket connections from the
// given origins.
func (m *Monitor) WithOrigins(origins ...string) *Monitor {
	m.origins = origins
	return m
}

// Handler is the router wrapped in CORS handling.
func (m *Monitor) Handler() http.Handler {
	return corsHandler(m.origins, m.Router())
}

// Router builds the API routes. The websocket route is registered outside
// the compressed subrouter since it needs the raw connection.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/progress/ws", m.streamProgress)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(compress)
	api.HandleFunc("/runs", m.listRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", m.getRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/prefs", m.getPrefs).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/history", m.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/export", m.exportRun).Methods(http.MethodGet)
	api.HandleFunc("/progress", m.listProgress).Methods(http.MethodGet)
	api.HandleFunc("/resource", m.listResources).Methods(http.MethodGet)
	api.HandleFunc("/profile", limit(m.profileLimiter, m.collectProfile)).Methods(http.MethodGet)
	return r
}

// Start listens on addr and serves in the background. It returns the URL
// the server is reachable at.
func (m *Monitor) Start(addr string) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	srv := &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	url := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
	m.logger.Info("monitor listening", "url", url)

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor stopped", "error", err)
		}
	}()
	return url, srv, nil
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		m.logger.Error("encode response", "error", err)
	}
}

func (m *Monitor) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, storage.ErrRunNotFound) {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

func (m *Monitor) listRuns(w http.ResponseWriter, _ *http.Request) {
	runs, err := m.store.List()
	if err != nil {
		m.writeError(w, err)
		return
	}
	m.writeJSON(w, runs)
}

func (m *Monitor) getRun(w http.ResponseWriter, r *http.Request) {
	meta, err := m.store.Load(mux.Vars(r)["id"])
	if err != nil {
		m.writeError(w, err)
		return
	}
	m.writeJSON(w, meta)
}

// getPrefs returns the raw parameter record, exactly as the kernel reads it.
func (m *Monitor) getPrefs(w http.ResponseWriter, r *http.Request) {
	p, err := m.store.LoadPrefs(mux.Vars(r)["id"])
	if err != nil {
		m.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if err := p.Encode(w); err != nil {
		m.logger.Error("write prefs", "error", err)
	}
}

func (m *Monitor) getHistory(w http.ResponseWriter, r *http.Request) {
	history, err := m.store.LoadHistory(mux.Vars(r)["id"])
	if err != nil {
		m.writeError(w, err)
		return
	}
	m.writeJSON(w, history)
}

func (m *Monitor) exportRun(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := m.store.ExportJSON(&buf, mux.Vars(r)["id"]); err != nil {
		m.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.progressSnapshots())
}

func (m *Monitor) progressSnapshots() []ProgressSnapshot {
	m.progressLock.Lock()
	out := make([]ProgressSnapshot, 0, len(m.progress))
	for _, p := range m.progress {
		out = append(out, p.Snapshot())
	}
	m.progressLock.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.writeError(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.writeError(w, err)
		return
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		m.writeError(w, err)
		return
	}

	m.writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: memInfo.RSS})
}

type profileRsp struct {
	DurationNanos int64            `json:"duration_nanos"`
	Samples       int              `json:"samples"`
	Functions     map[string]int64 `json:"functions"`
}

// collectProfile records a CPU profile of the process and returns sample
// counts per leaf function.
func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		m.writeError(w, err)
		return
	}
	time.Sleep(m.profileDuration)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.writeError(w, err)
		return
	}

	rsp := profileRsp{
		DurationNanos: prof.DurationNanos,
		Samples:       len(prof.Sample),
		Functions:     make(map[string]int64),
	}
	for _, s := range prof.Sample {
		if len(s.Location) == 0 || len(s.Location[0].Line) == 0 || len(s.Value) == 0 {
			continue
		}
		fn := s.Location[0].Line[0].Function
		if fn == nil {
			continue
		}
		rsp.Functions[fn.Name] += s.Value[0]
	}
	m.writeJSON(w, rsp)
}
