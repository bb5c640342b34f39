// Package host provides a scripted initiator that stands in for a processor.
// A Program runs in the process of the host and talks to the rest of the
// system through blocking reads and writes.
package host

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
	"github.com/sarchlab/hetsim/tracing"
)

// ErrTransaction is wrapped by all the errors caused by a transaction that
// did not complete with Ok.
var ErrTransaction = errors.New("transaction failed")

// TxnError reports a transaction that did not complete with Ok.
type TxnError struct {
	Command tlm.Command
	Address uint64
	Length  uint64
	Status  tlm.Status
}

func (e *TxnError) Error() string {
	return fmt.Sprintf("%s 0x%x (%d bytes): %s",
		e.Command, e.Address, e.Length, e.Status)
}

// Unwrap makes errors.Is(err, ErrTransaction) hold.
func (e *TxnError) Unwrap() error {
	return ErrTransaction
}

// A Program is what a host runs.
type Program func(h *Host) error

// Stats counts the transactions issued by a host.
type Stats struct {
	Reads        uint64
	Writes       uint64
	BytesRead    uint64
	BytesWritten uint64
	Failures     uint64
}

// Host runs a program.
type Host struct {
	*sim.ComponentBase

	engine  sim.Engine
	bus     tlm.Target
	program Program
	proc    *sim.Process

	err        error
	finished   bool
	finishedAt sim.VTime
	stats      Stats
}

// Err returns the error returned by the program.
func (h *Host) Err() error {
	return h.err
}

// Finished tells if the program has returned.
func (h *Host) Finished() bool {
	return h.finished
}

// FinishedAt returns the time when the program returned.
func (h *Host) FinishedAt() sim.VTime {
	return h.finishedAt
}

// Stats returns a copy of the statistics.
func (h *Host) Stats() Stats {
	return h.stats
}

// Now returns the current time.
func (h *Host) Now() sim.VTime {
	return h.proc.Now()
}

// Wait lets time pass.
func (h *Host) Wait(d sim.VTime) {
	h.proc.Wait(d)
}

func (h *Host) run(p *sim.Process) {
	h.proc = p

	err := h.program(h)

	h.finished = true
	h.finishedAt = p.Now()

	if err != nil {
		h.err = fmt.Errorf("%s: %w", h.Name(), err)
		slog.Error("program failed",
			sim.TimeAttr(p.Now()),
			"component", h.Name(),
			"error", err)
		h.engine.Abort(h.err)

		return
	}

	slog.Info("program finished",
		sim.TimeAttr(p.Now()),
		"component", h.Name())
}

// Read reads n bytes.
func (h *Host) Read(addr, n uint64) ([]byte, error) {
	txn := tlm.NewRead(addr, n)
	if err := h.issue(txn); err != nil {
		return nil, err
	}

	h.stats.Reads++
	h.stats.BytesRead += n

	return txn.Data, nil
}

// Write writes data.
func (h *Host) Write(addr uint64, data []byte) error {
	txn := tlm.NewWrite(addr, data)
	if err := h.issue(txn); err != nil {
		return err
	}

	h.stats.Writes++
	h.stats.BytesWritten += txn.Length

	return nil
}

// Read64 reads a little-endian 64-bit word.
func (h *Host) Read64(addr uint64) (uint64, error) {
	data, err := h.Read(addr, 8)
	if err != nil {
		return 0, err
	}

	return tlm.Uint64LE(data), nil
}

// Write64 writes a little-endian 64-bit word.
func (h *Host) Write64(addr, v uint64) error {
	data := make([]byte, 8)
	tlm.PutUint64LE(data, v)

	return h.Write(addr, data)
}

// Poll64 reads a word every interval until it equals want.
func (h *Host) Poll64(addr, want uint64, interval sim.VTime) error {
	for {
		v, err := h.Read64(addr)
		if err != nil {
			return err
		}

		if v == want {
			return nil
		}

		h.Wait(interval)
	}
}

func (h *Host) issue(txn *tlm.Transaction) error {
	tracing.TraceTxnInitiate(txn, h, "")
	h.bus.Call(h.proc, txn)
	tracing.TraceTxnFinalize(txn, h)

	if txn.IsOk() {
		return nil
	}

	h.stats.Failures++

	return &TxnError{
		Command: txn.Command,
		Address: txn.Address,
		Length:  txn.Length,
		Status:  txn.Status,
	}
}
