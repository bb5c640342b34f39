package tracing

import (
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// A list of hook poses for the hooks to apply to
var (
	HookPosTaskStart = &sim.HookPos{Name: "HookPosTaskStart"}
	HookPosTaskStep  = &sim.HookPos{Name: "HookPosTaskStep"}
	HookPosTaskEnd   = &sim.HookPos{Name: "HookPosTaskEnd"}
	HookPosTaskDelay = &sim.HookPos{Name: "HookPosTaskDelay"}
)

// Task kinds used by the transaction helpers.
const (
	KindTxnIn  = "txn_in"
	KindTxnOut = "txn_out"
)

// StartTask notifies the hooks that hook to the domain about the start of a
// task.
func StartTask(
	id string,
	parentID string,
	domain NamedHookable,
	kind string,
	what string,
	detail interface{},
) {
	if domain.NumHooks() == 0 {
		return
	}

	allRequiredFieldsMustBeNotEmpty(id, domain, kind, what)

	task := Task{
		ID:       id,
		ParentID: parentID,
		Kind:     kind,
		What:     what,
		Location: domain.Name(),
		Detail:   detail,
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStart,
	}
	domain.InvokeHook(ctx)
}

func allRequiredFieldsMustBeNotEmpty(
	id string,
	domain NamedHookable,
	kind string,
	what string,
) {
	if id == "" {
		panic("id must not be empty")
	}

	if domain.Name() == "" {
		panic("domain must have a name")
	}

	if kind == "" {
		panic("kind must not be empty")
	}

	if what == "" {
		panic("what must not be empty")
	}
}

// AddTaskStep marks that a milestone has been reached when processing a task.
func AddTaskStep(
	id string,
	domain NamedHookable,
	what string,
) {
	if domain.NumHooks() == 0 {
		return
	}

	task := Task{
		ID:    id,
		Steps: []TaskStep{{What: what}},
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskStep,
	}
	domain.InvokeHook(ctx)
}

// EndTask notifies the hooks about the end of a task. The detail, if not nil,
// replaces the detail given when the task started.
func EndTask(
	id string,
	domain NamedHookable,
	detail interface{},
) {
	if domain.NumHooks() == 0 {
		return
	}

	task := Task{
		ID:       id,
		Location: domain.Name(),
		Detail:   detail,
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   task,
		Pos:    HookPosTaskEnd,
	}
	domain.InvokeHook(ctx)
}

// DelayTask reports that a task cannot make progress, for example because a
// queue is full.
func DelayTask(
	taskID string,
	domain NamedHookable,
	delayType string,
	what string,
) {
	if domain.NumHooks() == 0 {
		return
	}

	delay := DelayEvent{
		TaskID: taskID,
		Type:   delayType,
		What:   what,
		Source: domain.Name(),
	}
	ctx := sim.HookCtx{
		Domain: domain,
		Item:   delay,
		Pos:    HookPosTaskDelay,
	}
	domain.InvokeHook(ctx)
}

// TxnTaskID generates a standard ID for serving a transaction at a
// component.
func TxnTaskID(txn *tlm.Transaction, domain NamedHookable) string {
	return txn.ID + "@" + domain.Name()
}

// TxnOutTaskID generates the ID of the task that represents a transaction
// from the point of view of its issuer.
func TxnOutTaskID(txn *tlm.Transaction) string {
	return txn.ID + "_out"
}

// TraceTxnInitiate starts a task of kind "txn_out" for a transaction that the
// domain is about to issue. The parent is the task that causes the
// transaction.
func TraceTxnInitiate(
	txn *tlm.Transaction,
	domain NamedHookable,
	taskParentID string,
) {
	StartTask(
		TxnOutTaskID(txn),
		taskParentID,
		domain,
		KindTxnOut,
		txn.Command.String(),
		txn,
	)
}

// TraceTxnFinalize ends the "txn_out" task once the issuer gets the
// transaction back.
func TraceTxnFinalize(txn *tlm.Transaction, domain NamedHookable) {
	EndTask(TxnOutTaskID(txn), domain, txn)
}

// TraceTxnReceive starts a task of kind "txn_in" for serving a transaction.
func TraceTxnReceive(txn *tlm.Transaction, domain NamedHookable) {
	StartTask(
		TxnTaskID(txn, domain),
		TxnOutTaskID(txn),
		domain,
		KindTxnIn,
		txn.Command.String(),
		txn,
	)
}

// TraceTxnComplete ends the "txn_in" task.
func TraceTxnComplete(txn *tlm.Transaction, domain NamedHookable) {
	EndTask(TxnTaskID(txn, domain), domain, txn)
}
