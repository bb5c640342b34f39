package dma

import "github.com/sarchlab/hetsim/tlm"

// Register offsets.
const (
	RegStatus      uint64 = 0x00
	RegControl     uint64 = 0x08
	RegSource      uint64 = 0x10
	RegDestination uint64 = 0x18
	RegLength      uint64 = 0x20

	registerWidth  = 8
	registerWindow = RegLength + registerWidth
)

// Values of the status register.
const (
	StatusIdle uint64 = 0
	StatusBusy uint64 = 1
)

// Registers is the register file of a DMA engine.
type Registers struct {
	Status      uint64
	Control     uint64
	Source      uint64
	Destination uint64
	Length      uint64
}

func (r *Registers) field(offset uint64) *uint64 {
	switch offset {
	case RegStatus:
		return &r.Status
	case RegControl:
		return &r.Control
	case RegSource:
		return &r.Source
	case RegDestination:
		return &r.Destination
	case RegLength:
		return &r.Length
	}

	return nil
}

// validAccess tells if a transaction touches exactly one register, starting at
// its first byte.
func validAccess(txn *tlm.Transaction) bool {
	if txn.Command != tlm.Read && txn.Command != tlm.Write {
		return false
	}

	if txn.Address >= registerWindow || txn.Address%registerWidth != 0 {
		return false
	}

	if txn.Length == 0 || txn.Length > registerWidth {
		return false
	}

	if txn.Command == tlm.Write && txn.Address == RegStatus {
		return false
	}

	return true
}

// read copies the low bytes of a register into the transaction.
func (r *Registers) read(txn *tlm.Transaction) {
	tlm.PutUint64LE(txn.Data, *r.field(txn.Address))
}

// write replaces the low bytes of a register with the payload.
func (r *Registers) write(txn *tlm.Transaction) {
	reg := r.field(txn.Address)

	buf := make([]byte, registerWidth)
	tlm.PutUint64LE(buf, *reg)
	copy(buf, txn.Data[:txn.Length])

	*reg = tlm.Uint64LE(buf)
}
