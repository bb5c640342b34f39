package memctl

import (
	"log"

	"github.com/sarchlab/hetsim/mem"
	"github.com/sarchlab/hetsim/sim"
)

type preload struct {
	addr uint64
	data []byte
}

// Builder can build memory controllers.
type Builder struct {
	freq       sim.Freq
	memorySize uint64
	timing     Timing
	storage    *mem.Storage
	preloads   []preload
}

// MakeBuilder returns a Builder with a 64 KB memory clocked at 100 MHz.
func MakeBuilder() Builder {
	return Builder{
		freq:       100 * sim.MHz,
		memorySize: 64 * mem.KB,
		timing:     DefaultTiming(),
	}
}

// WithFreq sets the memory clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMemorySize sets the number of addressable bytes.
func (b Builder) WithMemorySize(size uint64) Builder {
	b.memorySize = size
	return b
}

// WithTiming sets the DRAM timing parameters.
func (b Builder) WithTiming(t Timing) Builder {
	b.timing = t
	return b
}

// WithStorage makes the controller use an existing storage. The memory size
// follows the capacity of the storage.
func (b Builder) WithStorage(s *mem.Storage) Builder {
	b.storage = s
	return b
}

// WithPreload writes data at addr when the controller is built.
func (b Builder) WithPreload(addr uint64, data []byte) Builder {
	b.preloads = append(b.preloads, preload{addr: addr, data: data})
	return b
}

// Build creates a memory controller.
func (b Builder) Build(name string) *Comp {
	if !b.timing.valid() {
		log.Panicf("memctl %s: invalid timing %+v", name, b.timing)
	}

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		freq:          b.freq,
		timing:        b.timing,
		storage:       b.storage,
		lock:          sim.NewMutex(name + ".Lock"),
	}

	if c.storage == nil {
		c.storage = mem.NewStorage(b.memorySize)
	}

	for _, p := range b.preloads {
		err := c.storage.Write(p.addr, p.data)
		if err != nil {
			log.Panicf("memctl %s: cannot preload: %v", name, err)
		}
	}

	return c
}
