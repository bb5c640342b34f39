// Package accel models a streaming FIR accelerator that sits behind a bridge.
//
// The accelerator is controlled with single-byte commands. Arming it loads a
// new set of coefficients from the weight queue. Once streaming, every input
// beat of four samples produces one output beat of four filtered samples.
package accel

import (
	"log/slog"

	"github.com/sarchlab/hetsim/bridge"
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tracing"
)

// Control commands.
const (
	CtrlArm   uint8 = 0x02
	CtrlRearm uint8 = 0x09
	CtrlStop  uint8 = bridge.CtrlTerminate
)

// Status values.
const (
	StatusIdle      uint8 = 0
	StatusLoading   uint8 = 1
	StatusStreaming uint8 = 3
)

// SamplesPerBeat is the number of 16-bit samples in a beat.
const SamplesPerBeat = 4

// Stats counts the work done by an accelerator.
type Stats struct {
	InputBeats  uint64
	Samples     uint64
	Saturations uint64
	Arms        uint64
	Rearms      uint64
}

// Comp is a FIR accelerator.
type Comp struct {
	*sim.ComponentBase

	freq   sim.Freq
	ports  bridge.Ports
	filter *filter
	wake   *sim.Notifier
	proc   *sim.Process

	status uint8
	stats  Stats
}

// Status returns the status register.
func (c *Comp) Status() uint8 {
	return c.status
}

// Coefficients returns a copy of the loaded coefficients.
func (c *Comp) Coefficients() []int16 {
	return append([]int16(nil), c.filter.coefs...)
}

// Stats returns a copy of the statistics.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Stopped tells if the accelerator has received the stop command.
func (c *Comp) Stopped() bool {
	return c.proc.Done()
}

func (c *Comp) run(p *sim.Process) {
	for {
		if cmd, ok := c.ports.Control.TryPop(); ok {
			if !c.control(p, cmd) {
				return
			}

			continue
		}

		if c.status == StatusStreaming && !c.ports.Input.Empty() {
			c.processBeat(p)
			continue
		}

		c.wake.Wait(p)
	}
}

func (c *Comp) control(p *sim.Process, cmd uint8) bool {
	sim.Trace("accel control",
		sim.TimeAttr(p.Now()),
		"component", c.Name(),
		"command", cmd)

	switch cmd {
	case CtrlArm:
		c.arm(p)
	case CtrlRearm:
		c.stats.Rearms++
		c.filter.reset()
	case CtrlStop:
		c.status = StatusIdle
		slog.Info("accelerator stopped",
			sim.TimeAttr(p.Now()),
			"component", c.Name())

		return false
	default:
		slog.Warn("unknown accelerator command",
			sim.TimeAttr(p.Now()),
			"component", c.Name(),
			"command", cmd)
	}

	return true
}

func (c *Comp) arm(p *sim.Process) {
	taskID := sim.GetIDGenerator().Generate()
	tracing.StartTask(taskID, "", c, "accel", "load_weights", nil)

	c.stats.Arms++
	c.status = StatusLoading
	c.filter.reset()

	for i := 0; i < len(c.filter.coefs); i += SamplesPerBeat {
		if c.ports.Weight.Empty() {
			tracing.DelayTask(taskID, c, "queue_empty", c.ports.Weight.Name())
		}

		s := UnpackSamples(c.ports.Weight.Pop(p))
		copy(c.filter.coefs[i:], s[:])

		p.Wait(c.freq.Period())
	}

	c.status = StatusStreaming
	tracing.EndTask(taskID, c, nil)
}

func (c *Comp) processBeat(p *sim.Process) {
	in, _ := c.ports.Input.TryPop()
	x := UnpackSamples(in)

	var y [SamplesPerBeat]int16
	for i, s := range x {
		var saturated bool

		y[i], saturated = c.filter.step(s)
		if saturated {
			c.stats.Saturations++
		}
	}

	c.stats.InputBeats++
	c.stats.Samples += SamplesPerBeat

	p.Wait(c.freq.Period())

	if c.ports.Output.Full() {
		sim.Trace("stall",
			sim.TimeAttr(p.Now()),
			"component", c.Name(),
			"queue", c.ports.Output.Name(),
			"kind", "queue_full")
	}

	c.ports.Output.Push(p, PackSamples(y))
}
