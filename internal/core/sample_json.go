package core

import (
	"encoding/json"
	"time"
)

type sampleJSON struct {
	Endpoint      string  `json:"endpoint"`
	Method        string  `json:"method"`
	ResponseTime  float64 `json:"responseTime"`
	StatusCode    int     `json:"statusCode"`
	ContentLength int64   `json:"contentLength"`
	Timestamp     string  `json:"timestamp"`
	Error         string  `json:"error,omitempty"`
	WorkerID      int     `json:"workerId,omitempty"`
}

// MarshalJSON encodes a sample in the export shape: response time in
// milliseconds and status 0 for transport failures.
func (s Sample) MarshalJSON() ([]byte, error) {
	return json.Marshal(sampleJSON{
		Endpoint:      s.Endpoint,
		Method:        s.Method,
		ResponseTime:  s.ResponseTimeMs(),
		StatusCode:    s.StatusCode(),
		ContentLength: s.ContentLength,
		Timestamp:     s.Timestamp.UTC().Format(time.RFC3339Nano),
		Error:         s.Outcome.Reason,
		WorkerID:      s.WorkerID,
	})
}
