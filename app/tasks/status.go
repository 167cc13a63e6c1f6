package tasks

import (
	"sync"
	"time"

	"github.com/lysyi3m/sitemap-xml/app/sitemap"
	"github.com/lysyi3m/sitemap-xml/app/sites"
)

type RunStatus struct {
	TaskID     string
	Type       TaskType
	Sites      []sites.SiteConfig
	Report     sitemap.Report
	Error      string
	FinishedAt time.Time
}

// Status keeps the outcome of the last finished task.
type Status struct {
	mu   sync.RWMutex
	last *RunStatus
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) Record(run RunStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &run
}

func (s *Status) Last() (RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return RunStatus{}, false
	}
	return *s.last, true
}
