// Package memctl provides a DRAM memory controller whose latency depends on
// the bank and row that each access lands in.
package memctl

import (
	"fmt"

	"github.com/sarchlab/hetsim/mem"
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
	"github.com/sarchlab/hetsim/tracing"
)

// Stats counts the work done by a memory controller.
type Stats struct {
	Reads         uint64
	Writes        uint64
	FirstAccesses uint64
	RowHits       uint64
	RowMisses     uint64
	BytesRead     uint64
	BytesWritten  uint64
	Errors        uint64
	BusyTime      sim.VTime
}

// Comp is a DRAM memory controller. Requests are served one at a time in the
// order they arrive.
type Comp struct {
	*sim.ComponentBase

	freq    sim.Freq
	timing  Timing
	storage *mem.Storage
	banks   bankTable
	lock    *sim.Mutex
	stats   Stats
}

// Storage returns the byte store of the controller.
func (c *Comp) Storage() *mem.Storage {
	return c.storage
}

// MemorySize returns the number of addressable bytes.
func (c *Comp) MemorySize() uint64 {
	return c.storage.Capacity()
}

// Stats returns a copy of the statistics.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Call serves a read or a write.
func (c *Comp) Call(p *sim.Process, txn *tlm.Transaction) {
	tracing.TraceTxnReceive(txn, c)

	// Rejected requests never wait for the controller.
	switch {
	case !c.inRange(txn):
		c.fail(p, txn, tlm.AddressError)
		tracing.TraceTxnComplete(txn, c)

		return
	case txn.Command != tlm.Read && txn.Command != tlm.Write:
		c.fail(p, txn, tlm.CommandError)
		tracing.TraceTxnComplete(txn, c)

		return
	}

	c.lock.Lock(p)

	start := p.Now()

	if txn.Command == tlm.Read {
		c.read(p, txn)
	} else {
		c.write(p, txn)
	}

	c.stats.BusyTime += p.Now() - start

	tracing.TraceTxnComplete(txn, c)

	c.lock.Unlock()
}

func (c *Comp) inRange(txn *tlm.Transaction) bool {
	size := c.MemorySize()
	return txn.Address < size && txn.Length <= size-txn.Address
}

func (c *Comp) fail(p *sim.Process, txn *tlm.Transaction, s tlm.Status) {
	c.stats.Errors++

	sim.Trace("memory access rejected",
		sim.TimeAttr(p.Now()),
		"component", c.Name(),
		"command", txn.Command.String(),
		"address", fmt.Sprintf("0x%x", txn.Address),
		"length", txn.Length,
		"status", s.String())

	txn.Complete(s)
}

func (c *Comp) read(p *sim.Process, txn *tlm.Transaction) {
	kind := c.banks.read(txn.Address)
	c.countAccess(kind)

	cycles := c.timing.ReadCycles(txn.Length, kind)
	tracing.AddTaskStep(tracing.TxnTaskID(txn, c), c, kind.String())

	p.Wait(c.freq.Cycles(cycles))

	data, err := c.storage.Read(txn.Address, txn.Length)
	if err != nil {
		panic(err)
	}

	copy(txn.Data, data)

	c.stats.Reads++
	c.stats.BytesRead += txn.Length
	txn.Complete(tlm.Ok)
}

func (c *Comp) countAccess(kind AccessKind) {
	switch kind {
	case FirstAccess:
		c.stats.FirstAccesses++
	case RowHit:
		c.stats.RowHits++
	case RowMiss:
		c.stats.RowMisses++
	}
}

func (c *Comp) write(p *sim.Process, txn *tlm.Transaction) {
	cycles := c.timing.WriteCycles(txn.Length)

	p.Wait(c.freq.Cycles(cycles))

	err := c.storage.Write(txn.Address, txn.Data[:txn.Length])
	if err != nil {
		panic(err)
	}

	c.banks.write(txn.Address)

	c.stats.Writes++
	c.stats.BytesWritten += txn.Length
	txn.Complete(tlm.Ok)
}
