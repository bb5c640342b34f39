package accel

import "math"

// FIR filters samples with the given coefficients, starting from an empty
// history. Each output is the sum of coefficient-sample products, shifted
// right by shift bits and saturated to 16 bits.
func FIR(coefs, samples []int16, shift uint) []int16 {
	f := newFilter(len(coefs), shift)
	copy(f.coefs, coefs)

	out := make([]int16, len(samples))
	for i, x := range samples {
		out[i], _ = f.step(x)
	}

	return out
}

type filter struct {
	coefs   []int16
	history []int16
	shift   uint
}

func newFilter(taps int, shift uint) *filter {
	return &filter{
		coefs:   make([]int16, taps),
		history: make([]int16, taps),
		shift:   shift,
	}
}

func (f *filter) reset() {
	clear(f.history)
}

// step feeds one sample and returns the output, and whether it saturated.
func (f *filter) step(x int16) (int16, bool) {
	if len(f.history) == 0 {
		return 0, false
	}

	copy(f.history[1:], f.history[:len(f.history)-1])
	f.history[0] = x

	var acc int64
	for k, c := range f.coefs {
		acc += int64(c) * int64(f.history[k])
	}

	return saturate(acc >> f.shift)
}

func saturate(v int64) (int16, bool) {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16, true
	case v < math.MinInt16:
		return math.MinInt16, true
	}

	return int16(v), false
}

// PackSamples packs four 16-bit samples into a beat, the first sample in the
// lowest bits.
func PackSamples(s [SamplesPerBeat]int16) uint64 {
	var v uint64
	for i, x := range s {
		v |= uint64(uint16(x)) << (16 * i)
	}

	return v
}

// UnpackSamples splits a beat into four 16-bit samples.
func UnpackSamples(v uint64) [SamplesPerBeat]int16 {
	var s [SamplesPerBeat]int16
	for i := range s {
		s[i] = int16(uint16(v >> (16 * i)))
	}

	return s
}
