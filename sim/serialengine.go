package sim

import (
	"fmt"
	"log"
	"reflect"
	"sync"
	"sync/atomic"
)

// A SerialEngine is an Engine that always run events one after another.
// Processes spawned on the engine run one at a time, and only while the engine
// has handed control to them.
type SerialEngine struct {
	HookableBase

	timeLock       sync.RWMutex
	time           VTime
	queue          EventQueue
	secondaryQueue EventQueue

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	stopped  atomic.Bool
	errLock  sync.Mutex
	err      error
	current  *Process
	procs    []*Process
	finished bool

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)

	e.queue = NewEventQueue()
	e.secondaryQueue = NewEventQueue()

	return e
}

// Schedule register an event to be happen in the future
func (e *SerialEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time() < now {
		log.Panicf("scheduling an event at %s, earlier than current time %s",
			evt.Time(), now)
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}

	e.queue.Push(evt)
}

func (e *SerialEngine) readNow() VTime {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTime) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine
func (e *SerialEngine) Run() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if e.stopped.Load() || e.noMoreEvent() {
			return e.Err()
		}

		e.pauseLock.Lock()

		evt := e.nextEvent()
		now := e.readNow()
		if evt.Time() < now {
			log.Panicf(
				"cannot run event in the past, evt %s @ %s, now %s",
				reflect.TypeOf(evt), evt.Time(), now,
			)
		}
		e.writeNow(evt.Time())

		hookCtx := HookCtx{
			Domain: e,
			Pos:    HookPosBeforeEvent,
			Item:   evt,
		}
		e.InvokeHook(hookCtx)

		handler := evt.Handler()
		err := handler.Handle(evt)
		if err != nil {
			e.Abort(err)
		}

		hookCtx.Pos = HookPosAfterEvent
		e.InvokeHook(hookCtx)

		e.pauseLock.Unlock()
	}
}

func (e *SerialEngine) noMoreEvent() bool {
	return e.queue.Len() == 0 && e.secondaryQueue.Len() == 0
}

func (e *SerialEngine) nextEvent() Event {
	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	primaryEvt := e.queue.Peek()
	secondaryEvt := e.secondaryQueue.Peek()

	if primaryEvt.Time() <= secondaryEvt.Time() {
		e.queue.Pop()
		return primaryEvt
	}

	e.secondaryQueue.Pop()

	return secondaryEvt
}

// Pause prevents the SerialEngine to trigger more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// Stop makes Run return after the event being handled.
func (e *SerialEngine) Stop() {
	e.stopped.Store(true)
}

// Abort makes Run return err after the event being handled. Only the first
// error is kept.
func (e *SerialEngine) Abort(err error) {
	e.errLock.Lock()
	if e.err == nil {
		e.err = err
	}
	e.errLock.Unlock()

	e.stopped.Store(true)
}

// Stopped tells if Stop or Abort has been called.
func (e *SerialEngine) Stopped() bool {
	return e.stopped.Load()
}

// Err returns the error that aborted the simulation, if any.
func (e *SerialEngine) Err() error {
	e.errLock.Lock()
	defer e.errLock.Unlock()

	return e.err
}

// CurrentTime returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) CurrentTime() VTime {
	return e.readNow()
}

// CurrentProcess returns the process that is running, or nil if the engine is
// handling a plain event.
func (e *SerialEngine) CurrentProcess() *Process {
	return e.current
}

// Spawn creates a process. The process starts at the current time, after the
// events that are already scheduled for the current time.
func (e *SerialEngine) Spawn(name string, fn func(p *Process)) *Process {
	if e.finished {
		log.Panicf("cannot spawn process %s after the simulation finished", name)
	}

	p := newProcess(name, e, fn)
	e.procs = append(e.procs, p)
	p.wakeAt(e.readNow())

	return p
}

// Processes returns all the processes ever spawned on the engine.
func (e *SerialEngine) Processes() []*Process {
	return e.procs
}

// RegisterSimulationEndHandler invokes all the registered simulation end
// handler.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler and terminates all the
// processes that are still waiting.
func (e *SerialEngine) Finished() {
	if e.finished {
		return
	}

	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}

	for _, p := range e.procs {
		p.kill()
	}

	e.finished = true
}

func (e *SerialEngine) switchTo(p *Process) {
	if e.current != nil {
		log.Panicf("process %s resumed while %s is running",
			p.name, e.current.name)
	}

	e.current = p
	p.resumeAndWait()
	e.current = nil

	if p.panicVal != nil {
		v := p.panicVal
		p.panicVal = nil
		panic(fmt.Sprintf("process %s panicked: %v\n%s", p.name, v, p.stack))
	}
}
