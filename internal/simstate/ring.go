package simstate

// HistoryCapacity is the number of samples the history keeps; older samples
// are evicted first.
const HistoryCapacity = 100

// Sample is one (simulated time, value) history point.
type Sample struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// ring is a fixed-capacity FIFO over Samples. Zero value is ready to use.
type ring struct {
	buf   [HistoryCapacity]Sample
	start int
	n     int
}

func (r *ring) push(s Sample) {
	if r.n < HistoryCapacity {
		r.buf[(r.start+r.n)%HistoryCapacity] = s
		r.n++
		return
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % HistoryCapacity
}

// slice returns the held samples oldest first.
func (r *ring) slice() []Sample {
	out := make([]Sample, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%HistoryCapacity]
	}
	return out
}
