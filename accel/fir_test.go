package accel

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FIR", func() {
	It("should convolve with an empty starting history", func() {
		out := FIR([]int16{0x4000, 0x4000}, []int16{2, 4, 6}, 15)

		Expect(out).To(Equal([]int16{1, 3, 5}))
	})

	It("should round toward negative infinity", func() {
		out := FIR([]int16{0x4000}, []int16{-3, 3}, 15)

		Expect(out).To(Equal([]int16{-2, 1}))
	})

	It("should saturate", func() {
		coefs := []int16{math.MaxInt16, math.MaxInt16, math.MaxInt16}

		out := FIR(coefs, []int16{math.MaxInt16, math.MaxInt16, math.MinInt16, math.MinInt16, math.MinInt16}, 15)

		Expect(out[1]).To(Equal(int16(math.MaxInt16)))
		Expect(out[4]).To(Equal(int16(math.MinInt16)))
	})

	It("should give zeros without coefficients", func() {
		Expect(FIR(nil, []int16{1, 2}, 15)).To(Equal([]int16{0, 0}))
	})

	It("should pack the first sample in the lowest bits", func() {
		v := PackSamples([SamplesPerBeat]int16{1, -1, 0x1234, -32768})

		Expect(v).To(Equal(uint64(0x80001234ffff0001)))
		Expect(UnpackSamples(v)).To(Equal([SamplesPerBeat]int16{1, -1, 0x1234, -32768}))
	})
})
