// Package bridge connects the transaction world to a streaming accelerator.
// Transactions are served by a clocked driver that turns register accesses
// into pushes and pops on the queues of the accelerator.
package bridge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
	"github.com/sarchlab/hetsim/tracing"
)

// Offsets within the 0x80-byte window of a bridge.
const (
	OffsetStatus  uint64 = 0x00
	OffsetControl uint64 = 0x08
	OffsetWeight  uint64 = 0x10
	OffsetInput   uint64 = 0x30
	OffsetOutput  uint64 = 0x50

	windowMask uint64 = 0x7f
)

// BeatBytes is the width of a beat on the streaming queues.
const BeatBytes = 8

// CtrlTerminate is the control value that ends the simulation.
const CtrlTerminate = 0x0f

// ErrProtocolMismatch aborts a simulation in which the driver completes a
// transaction other than the one a caller waits for.
var ErrProtocolMismatch = errors.New("bridge completion does not match the request")

// StatusSource provides the value returned by status reads.
type StatusSource interface {
	Status() uint8
}

// Ports are the queues between the driver and the accelerator.
type Ports struct {
	Control *sim.FIFO[uint8]
	Weight  *sim.FIFO[uint64]
	Input   *sim.FIFO[uint64]
	Output  *sim.FIFO[uint64]
}

// Stats counts the work done by a bridge.
type Stats struct {
	Requests uint64
	Beats    uint64
	Stalls   uint64
	Errors   uint64
}

// Comp is a bridge.
type Comp struct {
	*sim.ComponentBase

	engine sim.Engine
	freq   sim.Freq
	status StatusSource
	ports  Ports

	inbound  *sim.FIFO[*tlm.Transaction]
	callLock *sim.Mutex
	matcher  *Matcher
	driver   *sim.Process

	terminated bool
	stats      Stats
}

// Ports returns the queues that the accelerator should use.
func (c *Comp) Ports() Ports {
	return c.ports
}

// Queues returns all the queues of the bridge.
func (c *Comp) Queues() []sim.Queue {
	return []sim.Queue{
		c.inbound,
		c.ports.Control,
		c.ports.Weight,
		c.ports.Input,
		c.ports.Output,
	}
}

// SetStatusSource sets where status reads get their value from.
func (c *Comp) SetStatusSource(s StatusSource) {
	c.status = s
}

// Terminated tells if the bridge has received the termination signal.
func (c *Comp) Terminated() bool {
	return c.terminated
}

// Stats returns a copy of the statistics.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Call hands the transaction to the driver and suspends the caller until the
// driver finishes it. Callers are served one at a time, in arrival order.
func (c *Comp) Call(p *sim.Process, txn *tlm.Transaction) {
	tracing.TraceTxnReceive(txn, c)

	if c.terminated {
		slog.Warn("request after termination",
			sim.TimeAttr(p.Now()),
			"component", c.Name(),
			"command", txn.Command.String(),
			"address", fmt.Sprintf("0x%x", txn.Address))
		txn.Complete(tlm.CommandError)
		tracing.TraceTxnComplete(txn, c)

		return
	}

	c.callLock.Lock(p)
	c.matcher.Register(txn)
	c.inbound.Push(p, txn)
	got := c.matcher.Next(p)
	c.callLock.Unlock()

	if got != txn {
		err := fmt.Errorf("%w: %s waits for %s, driver completed %s",
			ErrProtocolMismatch, c.Name(), txn.ID, got.ID)
		slog.Error(err.Error(), sim.TimeAttr(p.Now()))
		c.engine.Abort(err)
		tracing.TraceTxnComplete(txn, c)

		return
	}

	tracing.TraceTxnComplete(txn, c)

	if isTermination(txn) && txn.IsOk() {
		slog.Info("received exit signal",
			sim.TimeAttr(p.Now()),
			"component", c.Name())

		c.terminated = true
		c.engine.Stop()
	}
}

func isTermination(txn *tlm.Transaction) bool {
	return txn.Command == tlm.Write &&
		txn.Address&windowMask == OffsetControl &&
		tlm.Uint64LE(txn.Data) == CtrlTerminate
}

func (c *Comp) drive(p *sim.Process) {
	for {
		txn := c.inbound.Pop(p)
		p.WaitUntil(c.freq.ThisTick(p.Now()))

		c.stats.Requests++
		status := c.serve(p, txn)
		if status != tlm.Ok {
			c.stats.Errors++
		}
		txn.Complete(status)

		if err := c.matcher.Complete(txn); err != nil {
			slog.Error(err.Error(), sim.TimeAttr(p.Now()), "component", c.Name())
			c.engine.Abort(err)
		}
	}
}

func numBeats(length uint64) uint64 {
	return (length + BeatBytes - 1) / BeatBytes
}

func (c *Comp) serve(p *sim.Process, txn *tlm.Transaction) tlm.Status {
	offset := txn.Address & windowMask
	beats := numBeats(txn.Length)

	switch {
	case txn.Command == tlm.Read && offset == OffsetStatus && beats == 1:
		c.readStatus(p, txn)
	case txn.Command == tlm.Write && offset == OffsetControl && beats == 1:
		c.pushControl(p, txn)
	case txn.Command == tlm.Write && offset == OffsetWeight:
		c.pushBeats(p, txn, c.ports.Weight)
	case txn.Command == tlm.Write && offset == OffsetInput:
		c.pushBeats(p, txn, c.ports.Input)
	case txn.Command == tlm.Read && offset == OffsetOutput:
		c.popBeats(p, txn, c.ports.Output)
	default:
		slog.Warn("unsupported bridge access",
			sim.TimeAttr(p.Now()),
			"component", c.Name(),
			"command", txn.Command.String(),
			"address", fmt.Sprintf("0x%x", txn.Address),
			"length", txn.Length)

		return tlm.CommandError
	}

	return tlm.Ok
}

func (c *Comp) readStatus(p *sim.Process, txn *tlm.Transaction) {
	clear(txn.Data)

	if c.status != nil {
		txn.Data[0] = c.status.Status()
	}

	c.traceBeat(p, txn, uint64(txn.Data[0]))
}

func (c *Comp) pushControl(p *sim.Process, txn *tlm.Transaction) {
	v := txn.Data[0]

	c.traceBeat(p, txn, uint64(v))

	if c.ports.Control.Full() {
		c.reportStall(p, txn, c.ports.Control, "queue_full")
	}

	c.ports.Control.Push(p, v)
}

func (c *Comp) pushBeats(
	p *sim.Process,
	txn *tlm.Transaction,
	q *sim.FIFO[uint64],
) {
	for i := uint64(0); i < numBeats(txn.Length); i++ {
		beat := make([]byte, BeatBytes)
		copy(beat, txn.Data[i*BeatBytes:])
		v := tlm.Uint64LE(beat)

		c.traceBeat(p, txn, v)

		if q.Full() {
			c.reportStall(p, txn, q, "queue_full")
		}

		q.Push(p, v)
		c.stats.Beats++

		p.Wait(c.freq.Period())
	}
}

func (c *Comp) popBeats(
	p *sim.Process,
	txn *tlm.Transaction,
	q *sim.FIFO[uint64],
) {
	for i := uint64(0); i < numBeats(txn.Length); i++ {
		if q.Empty() {
			c.reportStall(p, txn, q, "queue_empty")
		}

		v := q.Pop(p)
		c.stats.Beats++

		beat := make([]byte, BeatBytes)
		tlm.PutUint64LE(beat, v)
		copy(txn.Data[i*BeatBytes:], beat)

		c.traceBeat(p, txn, v)

		p.Wait(c.freq.Period())
	}
}

func (c *Comp) traceBeat(p *sim.Process, txn *tlm.Transaction, v uint64) {
	sim.Trace("beat",
		sim.TimeAttr(p.Now()),
		"component", c.Name(),
		"command", txn.Command.String(),
		"address", fmt.Sprintf("0x%x", txn.Address),
		"length", txn.Length,
		"data", fmt.Sprintf("0x%x", v))
}

func (c *Comp) reportStall(
	p *sim.Process,
	txn *tlm.Transaction,
	q sim.Queue,
	kind string,
) {
	c.stats.Stalls++

	sim.Trace("stall",
		sim.TimeAttr(p.Now()),
		"component", c.Name(),
		"queue", q.Name(),
		"kind", kind)

	tracing.DelayTask(tracing.TxnTaskID(txn, c), c, kind, q.Name())
}
