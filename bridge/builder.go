package bridge

import (
	"log"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

// Builder can build bridges.
type Builder struct {
	engine       sim.Engine
	freq         sim.Freq
	controlDepth int
	weightDepth  int
	inputDepth   int
	outputDepth  int
	status       StatusSource
}

// MakeBuilder returns a Builder with a 1 GHz driver, a control queue of depth
// 1 and data queues of depth 4.
func MakeBuilder() Builder {
	return Builder{
		freq:         1 * sim.GHz,
		controlDepth: 1,
		weightDepth:  4,
		inputDepth:   4,
		outputDepth:  4,
	}
}

// WithEngine sets the engine that runs the driver.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the driver clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithQueueDepths sets the capacity of the control, weight, input and output
// queues.
func (b Builder) WithQueueDepths(control, weight, input, output int) Builder {
	b.controlDepth = control
	b.weightDepth = weight
	b.inputDepth = input
	b.outputDepth = output

	return b
}

// WithStatusSource sets where status reads get their value from.
func (b Builder) WithStatusSource(s StatusSource) Builder {
	b.status = s
	return b
}

// Build creates a bridge and starts its driver.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		log.Panicf("bridge %s: engine is not set", name)
	}

	for _, d := range []int{
		b.controlDepth, b.weightDepth, b.inputDepth, b.outputDepth,
	} {
		if d <= 0 {
			log.Panicf("bridge %s: queue depth must be positive", name)
		}
	}

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		freq:          b.freq,
		status:        b.status,
		ports: Ports{
			Control: sim.NewFIFO[uint8](name+".Control", b.controlDepth),
			Weight:  sim.NewFIFO[uint64](name+".Weight", b.weightDepth),
			Input:   sim.NewFIFO[uint64](name+".Input", b.inputDepth),
			Output:  sim.NewFIFO[uint64](name+".Output", b.outputDepth),
		},
		inbound:  sim.NewFIFO[*tlm.Transaction](name+".Inbound", 0),
		callLock: sim.NewMutex(name + ".CallLock"),
		matcher:  NewMatcher(name + ".Matcher"),
	}

	c.driver = b.engine.Spawn(name+".Driver", c.drive)

	return c
}
