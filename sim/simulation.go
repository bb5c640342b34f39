package sim

import "log"

// A Simulation keeps track of the engine, the components and the queues that
// make up a simulated system, so that tools such as monitors and reports can
// find them by name.
type Simulation struct {
	engine         Engine
	components     []Component
	compNameIndex  map[string]int
	queues         []Queue
	queueNameIndex map[string]int
}

// NewSimulation creates a new simulation.
func NewSimulation(engine Engine) *Simulation {
	return &Simulation{
		engine:         engine,
		compNameIndex:  make(map[string]int),
		queueNameIndex: make(map[string]int),
	}
}

// Engine returns the engine that runs the simulation.
func (s *Simulation) Engine() Engine {
	return s.engine
}

// RegisterComponent registers a component with the simulation. If the
// component owns queues (it has a Queues() []Queue method), the queues are
// registered too.
func (s *Simulation) RegisterComponent(c Component) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		log.Panicf("component %s already registered", compName)
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if owner, ok := c.(interface{ Queues() []Queue }); ok {
		for _, q := range owner.Queues() {
			s.RegisterQueue(q)
		}
	}
}

// RegisterQueue registers a queue with the simulation.
func (s *Simulation) RegisterQueue(q Queue) {
	name := q.Name()
	if _, found := s.queueNameIndex[name]; found {
		log.Panicf("queue %s already registered", name)
	}

	s.queues = append(s.queues, q)
	s.queueNameIndex[name] = len(s.queues) - 1
}

// Components returns all the registered components.
func (s *Simulation) Components() []Component {
	return s.components
}

// Queues returns all the registered queues.
func (s *Simulation) Queues() []Queue {
	return s.queues
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) Component {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// GetQueueByName returns the queue with the given name, or nil.
func (s *Simulation) GetQueueByName(name string) Queue {
	i, found := s.queueNameIndex[name]
	if !found {
		return nil
	}

	return s.queues[i]
}
