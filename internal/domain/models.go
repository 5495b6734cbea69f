package domain

import "time"

// Exchange records one request issued through the client and what came back.
type Exchange struct {
	ID         string        `json:"id"`
	Name       string        `json:"name,omitempty"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	BodyBytes  int           `json:"body_bytes"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`
	// Extracted holds values pulled out of the body, if extraction was requested.
	Extracted []string  `json:"extracted,omitempty"`
	At        time.Time `json:"at"`
}

// Completed reports whether an HTTP response was received.
func (e Exchange) Completed() bool {
	return e.StatusCode != 0
}
