package host

import (
	"log"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

// Builder can build hosts.
type Builder struct {
	engine  sim.Engine
	bus     tlm.Target
	program Program
}

// MakeBuilder returns a Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithBus sets the target that receives all the transactions.
func (b Builder) WithBus(bus tlm.Target) Builder {
	b.bus = bus
	return b
}

// WithProgram sets the program to run.
func (b Builder) WithProgram(program Program) Builder {
	b.program = program
	return b
}

// Build creates a host. The program starts at the current time of the
// engine.
func (b Builder) Build(name string) *Host {
	if b.engine == nil || b.bus == nil || b.program == nil {
		log.Panicf("host %s: engine, bus and program must be set", name)
	}

	h := &Host{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		bus:           b.bus,
		program:       b.program,
	}

	b.engine.Spawn(name, h.run)

	return h
}
