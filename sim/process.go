package sim

import (
	"log"
	"runtime"
	"runtime/debug"
)

// A Process is a sequential task that runs on an engine. It can suspend itself
// with Wait or by waiting on a Notifier, a Mutex or a FIFO. Processes never run
// concurrently with each other or with event handlers.
type Process struct {
	name   string
	engine *SerialEngine
	fn     func(p *Process)

	resume chan struct{}
	yield  chan struct{}
	killCh chan struct{}

	started     bool
	done        bool
	wakePending bool
	panicVal    interface{}
	stack       []byte
}

func newProcess(name string, e *SerialEngine, fn func(p *Process)) *Process {
	return &Process{
		name:   name,
		engine: e,
		fn:     fn,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
		killCh: make(chan struct{}),
	}
}

// Name returns the name of the process.
func (p *Process) Name() string {
	return p.name
}

// Engine returns the engine that runs the process.
func (p *Process) Engine() Engine {
	return p.engine
}

// Now returns the current simulated time.
func (p *Process) Now() VTime {
	return p.engine.CurrentTime()
}

// Done tells if the process function has returned.
func (p *Process) Done() bool {
	return p.done
}

// Wait suspends the process for d.
func (p *Process) Wait(d VTime) {
	p.WaitUntil(p.Now() + d)
}

// WaitUntil suspends the process until time t.
func (p *Process) WaitUntil(t VTime) {
	p.wakeAt(t)
	p.park()
}

// Yield lets the other tasks that are ready at the current time run first.
func (p *Process) Yield() {
	p.Wait(0)
}

// Handle resumes the process. It implements the Handler interface so that the
// process can be woken up by an event.
func (p *Process) Handle(_ Event) error {
	p.wakePending = false

	if p.done {
		return nil
	}

	p.engine.switchTo(p)

	return nil
}

func (p *Process) wakeAt(t VTime) {
	if p.wakePending {
		log.Panicf("process %s is woken up twice", p.name)
	}

	p.wakePending = true
	p.engine.Schedule(wakeEvent{time: t, proc: p})
}

func (p *Process) resumeAndWait() {
	if !p.started {
		p.started = true
		go p.run()
	} else {
		p.resume <- struct{}{}
	}

	<-p.yield
}

func (p *Process) run() {
	defer func() {
		if r := recover(); r != nil {
			p.panicVal = r
			p.stack = debug.Stack()
		}

		p.done = true
		p.yield <- struct{}{}
	}()

	p.fn(p)
}

// park hands control back to the engine and blocks until the engine resumes
// the process.
func (p *Process) park() {
	if p.engine.current != p {
		log.Panicf("process %s can only be suspended by itself", p.name)
	}

	p.yield <- struct{}{}

	select {
	case <-p.resume:
	case <-p.killCh:
		runtime.Goexit()
	}
}

func (p *Process) kill() {
	if p.done {
		return
	}

	if !p.started {
		p.done = true
		return
	}

	p.engine.current = p
	close(p.killCh)
	<-p.yield
	p.engine.current = nil
}

type wakeEvent struct {
	time VTime
	proc *Process
}

func (e wakeEvent) Time() VTime {
	return e.time
}

func (e wakeEvent) Handler() Handler {
	return e.proc
}

func (e wakeEvent) IsSecondary() bool {
	return false
}
