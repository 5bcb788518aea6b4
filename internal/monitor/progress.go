package monitor

import (
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/san-kum/nbody/internal/sim"
)

// Progress counts the steps of one simulation. It is a sim.Observer.
type Progress struct {
	ID    string
	Name  string
	Total int
	start time.Time
	done  atomic.Int64
}

type ProgressSnapshot struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Total   int     `json:"total"`
	Done    int64   `json:"done"`
	Elapsed float64 `json:"elapsed_seconds"`
}

func (p *Progress) OnStep(f sim.Frame) {
	p.done.Store(int64(f.Step))
}

func (p *Progress) Done() int64 { return p.done.Load() }

func (p *Progress) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		ID:      p.ID,
		Name:    p.Name,
		Total:   p.Total,
		Done:    p.done.Load(),
		Elapsed: time.Since(p.start).Seconds(),
	}
}

// CreateProgress registers a progress bar and returns it.
func (m *Monitor) CreateProgress(name string, total int) *Progress {
	p := &Progress{ID: xid.New().String(), Name: name, Total: total, start: time.Now()}

	m.progressLock.Lock()
	m.progress[p.ID] = p
	m.progressLock.Unlock()
	return p
}

// CompleteProgress removes a progress bar.
func (m *Monitor) CompleteProgress(p *Progress) {
	m.progressLock.Lock()
	delete(m.progress, p.ID)
	m.progressLock.Unlock()
}
