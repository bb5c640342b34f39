package bridge

import (
	"fmt"
	"log"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

// A Matcher pairs the transactions that the driver finishes with the callers
// that wait for them.
type Matcher struct {
	outstanding map[string]*tlm.Transaction
	completed   *sim.FIFO[*tlm.Transaction]
}

// NewMatcher creates an empty Matcher.
func NewMatcher(name string) *Matcher {
	return &Matcher{
		outstanding: make(map[string]*tlm.Transaction),
		completed:   sim.NewFIFO[*tlm.Transaction](name+".Completed", 0),
	}
}

// Register records a transaction that is about to be handed to the driver.
func (m *Matcher) Register(txn *tlm.Transaction) {
	if _, found := m.outstanding[txn.ID]; found {
		log.Panicf("transaction %s is already outstanding", txn.ID)
	}

	m.outstanding[txn.ID] = txn
}

// Complete marks a registered transaction as served and wakes the waiting
// caller. Completing a transaction that is not outstanding is a protocol
// error.
func (m *Matcher) Complete(txn *tlm.Transaction) error {
	if m.outstanding[txn.ID] != txn {
		return fmt.Errorf("%w: %s is not outstanding", ErrProtocolMismatch, txn.ID)
	}

	delete(m.outstanding, txn.ID)
	m.completed.TryPush(txn)

	return nil
}

// Next suspends p until a transaction completes and returns it.
func (m *Matcher) Next(p *sim.Process) *tlm.Transaction {
	return m.completed.Pop(p)
}

// Outstanding returns the number of transactions registered but not yet
// completed.
func (m *Matcher) Outstanding() int {
	return len(m.outstanding)
}
