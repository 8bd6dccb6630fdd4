package core

// Run groups consecutive events that belong to the same agent, so renderers
// can show one agent badge per block of activity instead of one per event.
type Run struct {
	AgentID string
	Events  []Event
}

// GroupRuns splits a sorted event list into per-agent runs. A new run starts
// whenever the owning agent changes. Event order is preserved.
func GroupRuns(events []Event) []Run {
	var runs []Run
	for _, e := range events {
		if len(runs) == 0 || runs[len(runs)-1].AgentID != e.AgentID {
			runs = append(runs, Run{AgentID: e.AgentID})
		}
		last := &runs[len(runs)-1]
		last.Events = append(last.Events, e)
	}
	return runs
}

// CountByType tallies events per type. Used for session summaries.
func CountByType(events []Event) map[EventType]int {
	counts := make(map[EventType]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts
}
