package replica

// emaCalculator calculates the exponential moving average (ema) for a
// series of latency samples. It's simple enough that an additional
// dependency isn't warranted. The type is not thread safe; the selector
// holding it does the locking.
type emaCalculator struct {
	m       float64
	ema     float64
	samples int
}

// The smoothing factor weights new samples against the history. 0.3
// converges quickly when a replica's latency shifts while still smoothing
// out single outliers.
const emaSmoothing = 0.3

func newEMACalculator() *emaCalculator {
	return &emaCalculator{m: emaSmoothing}
}

// Add adds a new sample and returns the new moving average. The first
// sample initializes the average rather than being averaged against zero.
func (e *emaCalculator) Add(x float64) float64 {
	if e.samples == 0 {
		e.ema = x
	} else {
		e.ema = (x-e.ema)*e.m + e.ema
	}
	e.samples++
	return e.ema
}

func (e *emaCalculator) Average() float64 {
	return e.ema
}

func (e *emaCalculator) HasSamples() bool {
	return e.samples > 0
}
