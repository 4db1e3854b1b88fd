package routing

import "github.com/lab5e/shardfunk/pkg/metrics"

// Metered wraps a router and reports every successful resolve on a
// metrics sink, tagged with a router name. Routing itself is unchanged;
// wrap any router variant at composition time to get decision counters.
type Metered struct {
	name   string
	router Router
	sink   metrics.Sink
}

// NewMetered wraps a router with decision metrics. The name tags the
// decisions on the sink, typically "hash", "range", "directory", "geo" or
// "compound". A nil sink discards the metrics.
func NewMetered(name string, router Router, sink metrics.Sink) *Metered {
	if sink == nil {
		sink = metrics.NewBlackHoleSink()
	}
	return &Metered{name: name, router: router, sink: sink}
}

// Resolve delegates to the wrapped router and reports the decision.
func (m *Metered) Resolve(key string) (string, error) {
	id, err := m.router.Resolve(key)
	if err != nil {
		return "", err
	}
	m.sink.RoutingDecision(m.name, id)
	return id, nil
}
