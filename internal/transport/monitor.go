package transport

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Degraded describes a mutating call the backend failed with a 5xx.
type Degraded struct {
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Reporter receives degraded-system signals. It is called once per failing
// call, on the caller's goroutine.
type Reporter interface {
	ReportDegraded(ev Degraded)
}

type ReporterFunc func(ev Degraded)

func (f ReporterFunc) ReportDegraded(ev Degraded) {
	f(ev)
}

// Status is the monitor's view of backend health.
type Status struct {
	Degraded bool      `json:"degraded"`
	Count    int       `json:"count"`
	Last     *Degraded `json:"last,omitempty"`
}

type subscriber struct {
	fn    func(Degraded)
	added time.Time
}

// Monitor is a Reporter that remembers the last degraded signal and fans it
// out to subscribers.
type Monitor struct {
	mu     sync.Mutex
	status Status
	subs   map[uuid.UUID]subscriber
}

func NewMonitor() *Monitor {
	return &Monitor{subs: make(map[uuid.UUID]subscriber)}
}

func (m *Monitor) ReportDegraded(ev Degraded) {
	m.mu.Lock()
	m.status.Degraded = true
	m.status.Count++
	last := ev
	m.status.Last = &last

	subs := make([]subscriber, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].added.Before(subs[j].added) })
	for _, s := range subs {
		s.fn(ev)
	}
}

// Subscribe calls fn for every subsequent signal until unsubscribe is called.
func (m *Monitor) Subscribe(fn func(Degraded)) (unsubscribe func()) {
	id := uuid.New()
	m.mu.Lock()
	m.subs[id] = subscriber{fn: fn, added: time.Now()}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status
	if s.Last != nil {
		last := *s.Last
		s.Last = &last
	}
	return s
}

// Clear acknowledges the current degraded state. The count is kept.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Degraded = false
}
