package tlm

import (
	"fmt"
	"log"
	"sort"

	"github.com/sarchlab/hetsim/sim"
)

// A Router forwards transactions to targets by address range, the way a bus
// decodes addresses. The target receives the address relative to the start of
// its window; the original address is restored before Call returns.
type Router struct {
	*sim.ComponentBase

	windows []window
}

type window struct {
	base   uint64
	size   uint64
	target Target
}

func (w window) contains(addr uint64) bool {
	return addr >= w.base && addr-w.base < w.size
}

// NewRouter creates a Router with no address mapped.
func NewRouter(name string) *Router {
	return &Router{ComponentBase: sim.NewComponentBase(name)}
}

// Map makes the router forward the addresses in [base, base+size) to target.
func (r *Router) Map(base, size uint64, target Target) {
	if size == 0 {
		log.Panicf("%s: window at 0x%x has zero size", r.Name(), base)
	}

	w := window{base: base, size: size, target: target}
	for _, other := range r.windows {
		if w.contains(other.base) || other.contains(base) {
			log.Panicf("%s: window [0x%x, 0x%x) overlaps [0x%x, 0x%x)",
				r.Name(), base, base+size, other.base, other.base+other.size)
		}
	}

	r.windows = append(r.windows, w)
	sort.Slice(r.windows, func(i, j int) bool {
		return r.windows[i].base < r.windows[j].base
	})
}

// Call forwards the transaction. An address that no window covers completes
// with AddressError.
func (r *Router) Call(p *sim.Process, txn *Transaction) {
	i := sort.Search(len(r.windows), func(i int) bool {
		return r.windows[i].base+r.windows[i].size > txn.Address
	})

	if i == len(r.windows) || !r.windows[i].contains(txn.Address) {
		sim.Trace("unmapped address",
			sim.TimeAttr(p.Now()),
			"router", r.Name(),
			"address", fmt.Sprintf("0x%x", txn.Address))
		txn.Complete(AddressError)

		return
	}

	w := r.windows[i]
	orig := txn.Address
	txn.Address -= w.base
	w.target.Call(p, txn)
	txn.Address = orig
}
