package sim

// A Notifier lets processes wait until something happens. Notify wakes up all
// the processes that are waiting, at the current time and in the order they
// started waiting.
type Notifier struct {
	name    string
	waiters []*Process
}

// NewNotifier creates a Notifier.
func NewNotifier(name string) *Notifier {
	return &Notifier{name: name}
}

// Name returns the name of the notifier.
func (n *Notifier) Name() string {
	return n.name
}

// Wait suspends p until the next Notify.
func (n *Notifier) Wait(p *Process) {
	n.waiters = append(n.waiters, p)
	p.park()
}

// Notify wakes up all the waiting processes.
func (n *Notifier) Notify() {
	waiters := n.waiters
	n.waiters = nil

	for _, w := range waiters {
		w.wakeAt(w.Now())
	}
}

// NumWaiters returns the number of processes that are waiting.
func (n *Notifier) NumWaiters() int {
	return len(n.waiters)
}
