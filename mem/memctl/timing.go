package memctl

// Timing holds the DRAM timing parameters, in memory clock cycles, and the
// width of the data bus.
type Timing struct {
	// CL is the column access latency.
	CL int `yaml:"cl"`
	// CCD is the column-to-column delay, the cycles taken per read beat.
	CCD int `yaml:"ccd"`
	// RCD is the row-to-column delay paid when a row is activated.
	RCD int `yaml:"rcd"`
	// RP is the precharge delay paid when an open row is closed.
	RP int `yaml:"rp"`
	// DataBits is the width of the data bus.
	DataBits int `yaml:"data_bits"`
}

// DefaultTiming returns CL=2, CCD=1, RCD=2, RP=3 on a 16-bit bus.
func DefaultTiming() Timing {
	return Timing{
		CL:       2,
		CCD:      1,
		RCD:      2,
		RP:       3,
		DataBits: 16,
	}
}

// writeBytesPerCycle is the number of bytes a write moves per cycle.
const writeBytesPerCycle = 8

// BytesPerBeat is the number of bytes a read delivers per beat. The bus
// transfers on both clock edges.
func (t Timing) BytesPerBeat() uint64 {
	return uint64(2 * t.CCD * t.DataBits / 8)
}

// ReadCycles returns the latency of reading length bytes.
func (t Timing) ReadCycles(length uint64, kind AccessKind) uint64 {
	numReads := ceilDiv(length, t.BytesPerBeat())
	cycles := uint64(t.CCD)*numReads + uint64(t.CL)

	switch kind {
	case FirstAccess:
		cycles += uint64(t.RCD)
	case RowMiss:
		cycles += uint64(t.RCD + t.RP)
	}

	return cycles
}

// WriteCycles returns the latency of writing length bytes. It does not depend
// on the bank state.
func (t Timing) WriteCycles(length uint64) uint64 {
	return ceilDiv(length, writeBytesPerCycle)
}

func (t Timing) valid() bool {
	return t.CL >= 0 && t.CCD > 0 && t.RCD >= 0 && t.RP >= 0 &&
		t.DataBits > 0 && t.BytesPerBeat() > 0
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}
