package core

// Usage holds token counters. Embedded both in Agent (cumulative) and in
// Event (the one event per request that carries its request's totals).
type Usage struct {
	InputTokens     int `json:"input_tokens,omitempty"`
	OutputTokens    int `json:"output_tokens,omitempty"`
	CacheReadTokens int `json:"cache_read_tokens,omitempty"`
}

// Add accumulates the counts from other into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadTokens += other.CacheReadTokens
}

// IsZero reports whether all counters are zero.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

// Ledger deduplicates usage that a dialect re-reports for the same logical
// request across multiple streamed records. Agent counters bump at most once
// per request id, and exactly one event per request id carries the non-zero
// usage, so summing a request's token fields across its events always equals
// the one-time delta added to the owning agent.
//
// A Ledger is scoped to one record stream: readers create a fresh one per
// file (the main transcript and each sub-agent file get their own).
type Ledger struct {
	credited   map[string]bool
	attributed map[string]bool
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{
		credited:   make(map[string]bool),
		attributed: make(map[string]bool),
	}
}

// Credit adds u to the agent's cumulative counters, at most once per request
// id. Records without a request id are cumulative deltas, not repeats, and
// always count.
func (l *Ledger) Credit(a *Agent, requestID string, u Usage) {
	if requestID != "" {
		if l.credited[requestID] {
			return
		}
		l.credited[requestID] = true
	}
	if a != nil {
		a.Usage.Add(u)
	}
}

// Attribute returns u the first time it is called for a request id and the
// zero Usage on every later call, so that exactly one event per request
// carries the request's totals. An empty request id always attributes zero.
func (l *Ledger) Attribute(requestID string, u Usage) Usage {
	if requestID == "" || l.attributed[requestID] {
		return Usage{}
	}
	l.attributed[requestID] = true
	return u
}
