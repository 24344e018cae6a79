package core

import "strconv"

// OutcomeKind distinguishes a received HTTP response from a transport failure.
type OutcomeKind uint8

const (
	OutcomeResponse OutcomeKind = iota
	OutcomeTransportFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResponse:
		return "response"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of a probe: either an HTTP response with a status
// code, or a transport failure (DNS, connect, TLS, timeout) with a reason.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Reason     string
}

// Response returns the outcome of a probe that received an HTTP response.
func Response(statusCode int) Outcome {
	return Outcome{Kind: OutcomeResponse, StatusCode: statusCode}
}

// TransportFailure returns the outcome of a probe that got no HTTP response.
func TransportFailure(err error) Outcome {
	reason := "transport failure"
	if err != nil {
		reason = err.Error()
	}
	return Outcome{Kind: OutcomeTransportFailure, Reason: reason}
}

// Status returns the HTTP status code, or 0 for a transport failure.
func (o Outcome) Status() int {
	if o.Kind == OutcomeTransportFailure {
		return 0
	}
	return o.StatusCode
}

// Successful reports whether the outcome is a response in [200, 400).
func (o Outcome) Successful() bool {
	return o.Kind == OutcomeResponse && o.StatusCode >= 200 && o.StatusCode < 400
}

// String renders the status code, or the failure reason prefixed with "ERR".
func (o Outcome) String() string {
	if o.Kind == OutcomeTransportFailure {
		return "ERR " + o.Reason
	}
	return strconv.Itoa(o.StatusCode)
}
