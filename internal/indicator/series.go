package indicator

// Value is one slot of an indicator series. Valid is false until the
// indicator's lookback window is filled.
type Value struct {
	Val   float64
	Valid bool
}

// Series is a full-length indicator output aligned with its input by index
type Series []Value

// NewSeries returns a series of n undefined values
func NewSeries(n int) Series {
	return make(Series, n)
}

// At returns the value at i and whether it is defined. Out of range
// indices are reported as undefined.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return s[i].Val, s[i].Valid
}

func (s Series) set(i int, v float64) {
	s[i] = Value{Val: v, Valid: true}
}

// Compact returns the defined values in order
func (s Series) Compact() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v.Valid {
			out = append(out, v.Val)
		}
	}
	return out
}

