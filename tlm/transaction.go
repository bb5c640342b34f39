// Package tlm defines the transactions that flow between the simulated
// components and the synchronous call interface they use to exchange them.
package tlm

import (
	"log"

	"github.com/sarchlab/hetsim/sim"
)

// Command is the operation a transaction asks for.
type Command int

// Commands.
const (
	Read Command = iota
	Write
	Ignore
)

func (c Command) String() string {
	switch c {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Ignore:
		return "Ignore"
	default:
		return "Unknown"
	}
}

// Status is the outcome of a transaction.
type Status int

// Statuses.
const (
	Incomplete Status = iota
	Ok
	CommandError
	AddressError
)

func (s Status) String() string {
	switch s {
	case Incomplete:
		return "Incomplete"
	case Ok:
		return "Ok"
	case CommandError:
		return "CommandError"
	case AddressError:
		return "AddressError"
	default:
		return "Unknown"
	}
}

// A Transaction is a single request sent to a target, together with its
// response. Data always holds Length bytes. Status starts as Incomplete and is
// set exactly once by the target that serves the request.
type Transaction struct {
	ID       string
	ParentID string
	Address  uint64
	Command  Command
	Length   uint64
	Data     []byte
	Status   Status
}

// Complete sets the status of the transaction. A transaction can only be
// completed once.
func (t *Transaction) Complete(s Status) {
	if s == Incomplete {
		log.Panicf("transaction %s cannot be completed as Incomplete", t.ID)
	}

	if t.Status != Incomplete {
		log.Panicf("transaction %s completed twice (%s, then %s)",
			t.ID, t.Status, s)
	}

	t.Status = s
}

// IsOk tells if the transaction completed successfully.
func (t *Transaction) IsOk() bool {
	return t.Status == Ok
}

// TransactionBuilder can build transactions.
type TransactionBuilder struct {
	parentID string
	address  uint64
	command  Command
	length   uint64
	data     []byte
}

// MakeTransactionBuilder creates a TransactionBuilder that builds 0-byte
// reads at address 0.
func MakeTransactionBuilder() TransactionBuilder {
	return TransactionBuilder{}
}

// WithAddress sets the address of the transaction.
func (b TransactionBuilder) WithAddress(addr uint64) TransactionBuilder {
	b.address = addr
	return b
}

// WithCommand sets the command of the transaction.
func (b TransactionBuilder) WithCommand(c Command) TransactionBuilder {
	b.command = c
	return b
}

// WithLength sets the number of bytes to transfer.
func (b TransactionBuilder) WithLength(n uint64) TransactionBuilder {
	b.length = n
	return b
}

// WithData sets the payload. If no length is given, the length follows the
// payload.
func (b TransactionBuilder) WithData(data []byte) TransactionBuilder {
	b.data = data
	return b
}

// WithParentID records the transaction that causes the new transaction.
func (b TransactionBuilder) WithParentID(id string) TransactionBuilder {
	b.parentID = id
	return b
}

// Build creates the transaction. The payload is zero-padded or truncated to
// the length.
func (b TransactionBuilder) Build() *Transaction {
	length := b.length
	if length == 0 {
		length = uint64(len(b.data))
	}

	data := make([]byte, length)
	copy(data, b.data)

	return &Transaction{
		ID:       sim.GetIDGenerator().Generate(),
		ParentID: b.parentID,
		Address:  b.address,
		Command:  b.command,
		Length:   length,
		Data:     data,
		Status:   Incomplete,
	}
}

// NewRead creates a read of n bytes at addr.
func NewRead(addr, n uint64) *Transaction {
	return MakeTransactionBuilder().
		WithCommand(Read).
		WithAddress(addr).
		WithLength(n).
		Build()
}

// NewWrite creates a write of data at addr.
func NewWrite(addr uint64, data []byte) *Transaction {
	return MakeTransactionBuilder().
		WithCommand(Write).
		WithAddress(addr).
		WithData(data).
		Build()
}
