package ui

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"sync"
	"time"
)

// DefaultCapacity is how many recent requests the timeline keeps.
const DefaultCapacity = 100

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Event struct {
	Time      time.Time
	Component string
	Kind      string
	Message   string
	Duration  string
}

// UIStore keeps the event timeline of the most recent requests in memory.
// Older requests are evicted once capacity is reached.
type UIStore struct {
	mu       sync.RWMutex
	capacity int
	order    []string // request IDs, oldest first
	requests map[string][]Event
}

func NewUIStore(capacity int) *UIStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &UIStore{
		capacity: capacity,
		requests: make(map[string][]Event),
	}
}

// AddEvent registra un evento para una petición. A nil store drops it.
func (s *UIStore) AddEvent(requestID, component, kind, msg, duration string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[requestID]; !ok {
		s.order = append(s.order, requestID)
		for len(s.order) > s.capacity {
			delete(s.requests, s.order[0])
			s.order = s.order[1:]
		}
	}

	s.requests[requestID] = append(s.requests[requestID], Event{
		Time:      time.Now(),
		Component: component,
		Kind:      kind,
		Message:   msg,
		Duration:  duration,
	})
}

// Len returns the number of requests currently kept.
func (s *UIStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

// snapshot devuelve una copia segura de los datos.
func (s *UIStore) snapshot() map[string][]Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Event, len(s.requests))
	for k, v := range s.requests {
		cp := make([]Event, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// HandleIndex lists recent requests, newest first, with their last event.
func (s *UIStore) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.snapshot()

	type row struct {
		ID        string
		LastEvent Event
		Count     int
	}

	rows := make([]row, 0, len(data))
	for id, evs := range data {
		if len(evs) == 0 {
			continue
		}
		rows = append(rows, row{
			ID:        id,
			LastEvent: evs[len(evs)-1],
			Count:     len(evs),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LastEvent.Time.After(rows[j].LastEvent.Time)
	})

	render(w, "index.html", rows)
}

// HandleRequest shows the full timeline of one request.
func (s *UIStore) HandleRequest(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Redirect(w, r, "/ui", http.StatusFound)
		return
	}

	events, ok := s.snapshot()[id]
	if !ok {
		http.Error(w, "request not found", http.StatusNotFound)
		return
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	render(w, "request.html", struct {
		ID     string
		Events []Event
	}{
		ID:     id,
		Events: events,
	})
}

// HandleChat serves the chat page.
func HandleChat(w http.ResponseWriter, r *http.Request) {
	render(w, "chat.html", nil)
}

// StaticHandler serves the embedded assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
