// Package dma provides a DMA engine that copies blocks of memory. The engine
// is programmed through memory-mapped registers. Writing the length register
// starts a transfer from the source address to the destination address.
package dma

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
	"github.com/sarchlab/hetsim/tracing"
)

// StagingBufferSize is the default size of the staging buffer.
const StagingBufferSize = 0x2000

// ErrStagingOverflow aborts a simulation in which a program asks for a
// transfer larger than the staging buffer.
var ErrStagingOverflow = errors.New("dma transfer does not fit in the staging buffer")

// ErrNestedTransfer aborts a simulation in which a transfer writes to the
// length register of the engine that runs it.
var ErrNestedTransfer = errors.New("dma transfer triggers another transfer on the same engine")

// Stats counts the work done by a DMA engine.
type Stats struct {
	Transfers      uint64
	FailedTransfer uint64
	BytesMoved     uint64
	BusyTime       sim.VTime
}

// Comp is a DMA engine. The transfer runs in the process of the initiator that
// writes the length register, so that the write completes only when the data
// has reached the destination. One transfer runs at a time.
type Comp struct {
	*sim.ComponentBase

	engine          sim.Engine
	bus             tlm.Target
	registerLatency sim.VTime
	staging         []byte

	regs         Registers
	regLock      *sim.Mutex
	transferLock *sim.Mutex
	stats        Stats
}

// Registers returns a snapshot of the register file.
func (c *Comp) Registers() Registers {
	return c.regs
}

// Stats returns a copy of the statistics.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Call serves a register access.
func (c *Comp) Call(p *sim.Process, txn *tlm.Transaction) {
	tracing.TraceTxnReceive(txn, c)

	txn.Complete(c.serve(p, txn))

	tracing.TraceTxnComplete(txn, c)
}

func (c *Comp) serve(p *sim.Process, txn *tlm.Transaction) tlm.Status {
	if !validAccess(txn) {
		sim.Trace("invalid dma register access",
			sim.TimeAttr(p.Now()),
			"component", c.Name(),
			"command", txn.Command.String(),
			"address", fmt.Sprintf("0x%x", txn.Address),
			"length", txn.Length)

		return tlm.CommandError
	}

	c.regLock.Lock(p)
	p.Wait(c.registerLatency)

	if txn.Command == tlm.Read {
		c.regs.read(txn)
	} else {
		c.regs.write(txn)
	}

	src, dst, length := c.regs.Source, c.regs.Destination, c.regs.Length
	c.regLock.Unlock()

	if txn.Command != tlm.Write || txn.Address != RegLength {
		return tlm.Ok
	}

	if c.transferLock.Owner() == p {
		err := fmt.Errorf("%w: %s wrote its own length register",
			ErrNestedTransfer, c.Name())
		slog.Error(err.Error(), sim.TimeAttr(p.Now()))
		c.engine.Abort(err)

		return tlm.CommandError
	}

	if length > uint64(len(c.staging)) {
		err := fmt.Errorf("%w: %s asked for 0x%x bytes, buffer holds 0x%x",
			ErrStagingOverflow, c.Name(), length, len(c.staging))
		slog.Error(err.Error(), sim.TimeAttr(p.Now()))
		c.engine.Abort(err)

		return tlm.CommandError
	}

	return c.transfer(p, txn, src, dst, length)
}

// transfer copies length bytes from src to dst. The parameters are latched
// by the trigger write.
func (c *Comp) transfer(
	p *sim.Process,
	trigger *tlm.Transaction,
	src, dst, length uint64,
) tlm.Status {
	c.transferLock.Lock(p)
	start := p.Now()

	c.regLock.Lock(p)
	c.regs.Status = StatusBusy
	c.regLock.Unlock()

	parentTask := tracing.TxnTaskID(trigger, c)

	read := tlm.MakeTransactionBuilder().
		WithCommand(tlm.Read).
		WithAddress(src).
		WithLength(length).
		WithParentID(trigger.ID).
		Build()
	c.issue(p, read, parentTask)

	status := read.Status
	if status == tlm.Ok {
		copy(c.staging, read.Data)

		write := tlm.MakeTransactionBuilder().
			WithCommand(tlm.Write).
			WithAddress(dst).
			WithLength(length).
			WithData(c.staging[:length]).
			WithParentID(trigger.ID).
			Build()
		c.issue(p, write, parentTask)

		status = write.Status
	}

	c.regLock.Lock(p)
	c.regs.Status = StatusIdle
	c.regLock.Unlock()

	c.stats.BusyTime += p.Now() - start
	if status == tlm.Ok {
		c.stats.Transfers++
		c.stats.BytesMoved += length
	} else {
		c.stats.FailedTransfer++
	}

	c.transferLock.Unlock()

	return status
}

func (c *Comp) issue(p *sim.Process, txn *tlm.Transaction, parentTask string) {
	tracing.TraceTxnInitiate(txn, c, parentTask)
	c.bus.Call(p, txn)
	tracing.TraceTxnFinalize(txn, c)

	if txn.Status != tlm.Ok {
		sim.Trace("dma transfer failed",
			sim.TimeAttr(p.Now()),
			"component", c.Name(),
			"command", txn.Command.String(),
			"address", fmt.Sprintf("0x%x", txn.Address),
			"status", txn.Status.String())
	}
}
