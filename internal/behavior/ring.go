package behavior

// mpgWindowCapacity is the number of recent MPG samples kept per
// estimator for cross-validation.
const mpgWindowCapacity = 10

// sampleWindow is a fixed-capacity circular buffer of float64 samples.
// Once full, each new sample overwrites the oldest one.
type sampleWindow struct {
	values []float64
	next   int
	full   bool
}

func newSampleWindow(capacity int) *sampleWindow {
	return &sampleWindow{values: make([]float64, capacity)}
}

// Add appends a sample, evicting the oldest if the window is full.
func (w *sampleWindow) Add(v float64) {
	w.values[w.next] = v
	w.next++
	if w.next == len(w.values) {
		w.next = 0
		w.full = true
	}
}

// Len returns the number of samples currently held.
func (w *sampleWindow) Len() int {
	if w.full {
		return len(w.values)
	}
	return w.next
}

// Samples returns a copy of the held samples. Order is not meaningful
// to callers; the window is only ever consumed as a set.
func (w *sampleWindow) Samples() []float64 {
	out := make([]float64, w.Len())
	copy(out, w.values[:w.Len()])
	return out
}
