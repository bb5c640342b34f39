package sim

import (
	"fmt"
	"math"
)

// VTime is a point in (or a span of) simulated time, in picoseconds.
type VTime uint64

// Units of VTime.
const (
	PS  VTime = 1
	NS        = 1000 * PS
	US        = 1000 * NS
	MS        = 1000 * US
	Sec       = 1000 * MS
)

// MaxVTime is the largest representable time.
const MaxVTime = VTime(math.MaxUint64)

var timeUnits = []struct {
	unit VTime
	name string
}{
	{Sec, "s"},
	{MS, "ms"},
	{US, "us"},
	{NS, "ns"},
}

// String prints the time in the largest unit that represents it exactly,
// e.g. "10 ns" or "1500 ps".
func (t VTime) String() string {
	if t == 0 {
		return "0 s"
	}

	for _, u := range timeUnits {
		if t%u.unit == 0 {
			return fmt.Sprintf("%d %s", t/u.unit, u.name)
		}
	}

	return fmt.Sprintf("%d ps", uint64(t))
}

// InSec converts the time to seconds.
func (t VTime) InSec() float64 {
	return float64(t) / float64(Sec)
}

// InNS converts the time to nanoseconds.
func (t VTime) InNS() float64 {
	return float64(t) / float64(NS)
}
