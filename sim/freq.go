package sim

import (
	"log"
	"math"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTime {
	if f <= 0 {
		log.Panic("frequency must be positive")
	}

	p := VTime(math.Round(float64(Sec) / float64(f)))
	if p == 0 {
		log.Panicf("frequency %.0f Hz is beyond picosecond resolution", f)
	}

	return p
}

// Cycles returns the duration of n cycles.
func (f Freq) Cycles(n uint64) VTime {
	return VTime(n) * f.Period()
}

// Cycle converts a time to the number of full cycles passed since time 0.
func (f Freq) Cycle(time VTime) uint64 {
	return uint64(time / f.Period())
}

// ThisTick returns the current tick time
//
//	            Input
//	            (          ]
//	 |----------|----------|----------|----->
//	                       |
//	                       Output
func (f Freq) ThisTick(now VTime) VTime {
	p := f.Period()
	return (now + p - 1) / p * p
}

// NextTick returns the next tick time.
//
//	            Input
//	            [          )
//	 |----------|----------|----------|----->
//	                       |
//	                       Output
func (f Freq) NextTick(now VTime) VTime {
	p := f.Period()
	return (now/p + 1) * p
}

// NCyclesLater returns the time after N cycles, counted from the tick at or
// right after now.
func (f Freq) NCyclesLater(n int, now VTime) VTime {
	if n < 0 {
		log.Panic("cycle count cannot be negative")
	}

	return f.ThisTick(now) + VTime(n)*f.Period()
}
