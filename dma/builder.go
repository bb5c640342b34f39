package dma

import (
	"log"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

// Builder can build DMA engines.
type Builder struct {
	engine          sim.Engine
	bus             tlm.Target
	registerLatency sim.VTime
	bufferSize      uint64
}

// MakeBuilder returns a Builder with a 1 ns register access latency and an
// 8 KB staging buffer.
func MakeBuilder() Builder {
	return Builder{
		registerLatency: 1 * sim.NS,
		bufferSize:      StagingBufferSize,
	}
}

// WithEngine sets the engine. The engine is aborted when a transfer does not
// fit in the staging buffer.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithBus sets the target that the DMA engine reads from and writes to.
func (b Builder) WithBus(bus tlm.Target) Builder {
	b.bus = bus
	return b
}

// WithRegisterLatency sets the time taken by each register access.
func (b Builder) WithRegisterLatency(t sim.VTime) Builder {
	b.registerLatency = t
	return b
}

// WithBufferSize sets the size of the staging buffer.
func (b Builder) WithBufferSize(n uint64) Builder {
	b.bufferSize = n
	return b
}

// Build creates a DMA engine.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		log.Panicf("dma %s: engine is not set", name)
	}

	if b.bus == nil {
		log.Panicf("dma %s: bus is not set", name)
	}

	return &Comp{
		ComponentBase:   sim.NewComponentBase(name),
		engine:          b.engine,
		bus:             b.bus,
		registerLatency: b.registerLatency,
		staging:         make([]byte, b.bufferSize),
		regLock:         sim.NewMutex(name + ".RegLock"),
		transferLock:    sim.NewMutex(name + ".TransferLock"),
	}
}
