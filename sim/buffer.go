package sim

import "log"

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &HookPos{Name: "Buf Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &HookPos{Name: "Buf Pop"}

// A Queue is the type-independent view of a FIFO, used by monitors and
// reports.
type Queue interface {
	Named
	Hookable

	Capacity() int
	Size() int
}

// A FIFO is a bounded first-in-first-out queue shared between processes.
// Push suspends the caller while the FIFO is full and Pop suspends the caller
// while it is empty. A capacity of 0 or less makes the FIFO unbounded.
type FIFO[T any] struct {
	HookableBase

	name     string
	capacity int
	elements []T

	notFull  *Notifier
	notEmpty *Notifier
}

// NewFIFO creates a FIFO.
func NewFIFO[T any](name string, capacity int) *FIFO[T] {
	return &FIFO[T]{
		name:     name,
		capacity: capacity,
		notFull:  NewNotifier(name + ".NotFull"),
		notEmpty: NewNotifier(name + ".NotEmpty"),
	}
}

// Name returns the name of the buffer.
func (f *FIFO[T]) Name() string {
	return f.name
}

// Capacity returns the maximum number of elements.
func (f *FIFO[T]) Capacity() int {
	return f.capacity
}

// Size returns the number of elements in the FIFO.
func (f *FIFO[T]) Size() int {
	return len(f.elements)
}

// Full tells if a Push would suspend.
func (f *FIFO[T]) Full() bool {
	return f.capacity > 0 && len(f.elements) >= f.capacity
}

// Empty tells if a Pop would suspend.
func (f *FIFO[T]) Empty() bool {
	return len(f.elements) == 0
}

// Push appends v, waiting for room if the FIFO is full.
func (f *FIFO[T]) Push(p *Process, v T) {
	for f.Full() {
		f.notFull.Wait(p)
	}

	f.push(v)
}

// TryPush appends v if there is room.
func (f *FIFO[T]) TryPush(v T) bool {
	if f.Full() {
		return false
	}

	f.push(v)

	return true
}

// Pop removes the oldest element, waiting for one if the FIFO is empty.
func (f *FIFO[T]) Pop(p *Process) T {
	for f.Empty() {
		f.notEmpty.Wait(p)
	}

	return f.pop()
}

// TryPop removes the oldest element if there is one.
func (f *FIFO[T]) TryPop() (T, bool) {
	if f.Empty() {
		var zero T
		return zero, false
	}

	return f.pop(), true
}

// Peek returns the oldest element without removing it.
func (f *FIFO[T]) Peek() (T, bool) {
	if f.Empty() {
		var zero T
		return zero, false
	}

	return f.elements[0], true
}

// Clear drops all the elements.
func (f *FIFO[T]) Clear() {
	f.elements = nil
	f.notFull.Notify()
}

// WaitNotEmpty suspends p until the FIFO holds at least one element.
func (f *FIFO[T]) WaitNotEmpty(p *Process) {
	for f.Empty() {
		f.notEmpty.Wait(p)
	}
}

func (f *FIFO[T]) push(v T) {
	if f.Full() {
		log.Panicf("fifo %s overflow", f.name)
	}

	f.elements = append(f.elements, v)

	if f.NumHooks() > 0 {
		f.InvokeHook(HookCtx{
			Domain: f,
			Pos:    HookPosBufPush,
			Item:   v,
		})
	}

	f.notEmpty.Notify()
}

func (f *FIFO[T]) pop() T {
	v := f.elements[0]
	f.elements = f.elements[1:]

	if f.NumHooks() > 0 {
		f.InvokeHook(HookCtx{
			Domain: f,
			Pos:    HookPosBufPop,
			Item:   v,
		})
	}

	f.notFull.Notify()

	return v
}
