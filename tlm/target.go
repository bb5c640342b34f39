package tlm

import "github.com/sarchlab/hetsim/sim"

// A Target serves transactions. Call suspends the calling process until the
// transaction is fully served and always returns with the status set.
type Target interface {
	Call(p *sim.Process, txn *Transaction)
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(p *sim.Process, txn *Transaction)

// Call calls the function.
func (f TargetFunc) Call(p *sim.Process, txn *Transaction) {
	f(p, txn)
}
