package sim

import "log"

// A Mutex serializes processes. Processes that cannot acquire the lock are
// suspended and take the lock in the order they asked for it.
type Mutex struct {
	name    string
	owner   *Process
	waiters []*Process
}

// NewMutex creates a Mutex.
func NewMutex(name string) *Mutex {
	return &Mutex{name: name}
}

// Name returns the name of the mutex.
func (m *Mutex) Name() string {
	return m.name
}

// Lock acquires the mutex, suspending p while another process holds it.
func (m *Mutex) Lock(p *Process) {
	if m.owner == p {
		log.Panicf("process %s locks %s twice", p.Name(), m.name)
	}

	if m.owner == nil {
		m.owner = p
		return
	}

	m.waiters = append(m.waiters, p)
	p.park()
}

// TryLock acquires the mutex if it is free.
func (m *Mutex) TryLock(p *Process) bool {
	if m.owner != nil {
		return false
	}

	m.owner = p

	return true
}

// Unlock releases the mutex and hands it to the longest waiting process.
func (m *Mutex) Unlock() {
	if m.owner == nil {
		log.Panicf("unlocking %s, which is not locked", m.name)
	}

	if len(m.waiters) == 0 {
		m.owner = nil
		return
	}

	next := m.waiters[0]
	m.waiters = m.waiters[1:]
	m.owner = next
	next.wakeAt(next.Now())
}

// Locked tells if the mutex is held.
func (m *Mutex) Locked() bool {
	return m.owner != nil
}

// Owner returns the process that holds the lock.
func (m *Mutex) Owner() *Process {
	return m.owner
}
