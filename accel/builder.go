package accel

import (
	"log"

	"github.com/sarchlab/hetsim/bridge"
	"github.com/sarchlab/hetsim/sim"
)

// Builder can build accelerators.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	taps   int
	shift  uint
	ports  *bridge.Ports
}

// MakeBuilder returns a Builder for a 32-tap filter at 1 GHz with a shift of
// 15 bits.
func MakeBuilder() Builder {
	return Builder{
		freq:  1 * sim.GHz,
		taps:  32,
		shift: 15,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithTaps sets the number of coefficients. It must be a multiple of four.
func (b Builder) WithTaps(n int) Builder {
	b.taps = n
	return b
}

// WithShift sets how many bits each sum is shifted right.
func (b Builder) WithShift(n uint) Builder {
	b.shift = n
	return b
}

// WithPorts sets the queues that connect the accelerator to a bridge.
func (b Builder) WithPorts(p bridge.Ports) Builder {
	b.ports = &p
	return b
}

// Build creates an accelerator and starts it.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		log.Panicf("accel %s: engine is not set", name)
	}

	if b.ports == nil {
		log.Panicf("accel %s: ports are not set", name)
	}

	if b.taps <= 0 || b.taps%SamplesPerBeat != 0 {
		log.Panicf("accel %s: %d taps is not a positive multiple of %d",
			name, b.taps, SamplesPerBeat)
	}

	c := &Comp{
		ComponentBase: sim.NewComponentBase(name),
		freq:          b.freq,
		ports:         *b.ports,
		filter:        newFilter(b.taps, b.shift),
		wake:          sim.NewNotifier(name + ".Wake"),
	}

	wakeHook := sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos == sim.HookPosBufPush {
			c.wake.Notify()
		}
	})
	c.ports.Control.AcceptHook(wakeHook)
	c.ports.Input.AcceptHook(wakeHook)

	c.proc = b.engine.Spawn(name, c.run)

	return c
}
