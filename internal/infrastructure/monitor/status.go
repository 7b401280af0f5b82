package monitor

import "time"

// Component is the last check result of one dependency.
type Component struct {
	Healthy  bool          `json:"healthy"`
	Critical bool          `json:"critical"`
	Error    string        `json:"error,omitempty"`
	Latency  time.Duration `json:"latency_ns"`
}

type Status struct {
	Online     bool                 `json:"online"`
	Components map[string]Component `json:"components"`
	BufferSize int                  `json:"buffer_size"`
	LastCheck  time.Time            `json:"last_check"`
}

// Healthy reports whether the named component passed its last check.
func (s Status) Healthy(name string) bool {
	c, ok := s.Components[name]
	return ok && c.Healthy
}
