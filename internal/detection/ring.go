package detection

// ring is a fixed-capacity circular buffer of float64 samples. Appending
// past capacity evicts the oldest sample, so the buffer always holds the
// most recent values in insertion order.
type ring struct {
	data []float64
	head int
	size int
}

func newRing(capacity int) *ring {
	return &ring{data: make([]float64, capacity)}
}

func (r *ring) Append(v float64) {
	if r.size < len(r.data) {
		r.data[(r.head+r.size)%len(r.data)] = v
		r.size++
		return
	}
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
}

func (r *ring) Len() int {
	return r.size
}

// Values copies out the buffered samples, oldest first.
func (r *ring) Values() []float64 {
	out := make([]float64, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.data[(r.head+i)%len(r.data)]
	}
	return out
}

// ColorBuffer holds per-channel color time series for one session.
type ColorBuffer struct {
	R, G, B *ring
}

func NewColorBuffer(capacity int) *ColorBuffer {
	return &ColorBuffer{
		R: newRing(capacity),
		G: newRing(capacity),
		B: newRing(capacity),
	}
}

func (cb *ColorBuffer) Append(s ColorSample) {
	cb.R.Append(s.R)
	cb.G.Append(s.G)
	cb.B.Append(s.B)
}

func (cb *ColorBuffer) Len() int {
	return cb.R.Len()
}

// ColorSample is the mean forehead color of one frame.
type ColorSample struct {
	R, G, B float64
}

// ConfidenceSample pairs a visual-model confidence with its frame number.
type ConfidenceSample struct {
	FrameNumber int
	Confidence  float64
}

// ConfidenceWindow is a fixed-capacity FIFO of recent confidence samples.
type ConfidenceWindow struct {
	data []ConfidenceSample
	head int
	size int
}

func NewConfidenceWindow(capacity int) *ConfidenceWindow {
	return &ConfidenceWindow{data: make([]ConfidenceSample, capacity)}
}

func (w *ConfidenceWindow) Append(s ConfidenceSample) {
	if w.size < len(w.data) {
		w.data[(w.head+w.size)%len(w.data)] = s
		w.size++
		return
	}
	w.data[w.head] = s
	w.head = (w.head + 1) % len(w.data)
}

func (w *ConfidenceWindow) Len() int {
	return w.size
}

func (w *ConfidenceWindow) Values() []ConfidenceSample {
	out := make([]ConfidenceSample, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.data[(w.head+i)%len(w.data)]
	}
	return out
}
