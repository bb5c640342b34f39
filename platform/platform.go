// Package platform assembles the simulated system: a host, a DRAM memory
// controller, a DMA engine and a FIR accelerator behind a bridge, connected by
// a system bus and a peripheral bus.
package platform

import (
	"github.com/sarchlab/hetsim/accel"
	"github.com/sarchlab/hetsim/bridge"
	"github.com/sarchlab/hetsim/dma"
	"github.com/sarchlab/hetsim/host"
	"github.com/sarchlab/hetsim/mem/memctl"
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
	"github.com/sarchlab/hetsim/tracing"
)

// Platform is a built system, ready to run.
type Platform struct {
	Engine     *sim.SerialEngine
	Simulation *sim.Simulation

	Host          *host.Host
	SystemBus     *tlm.Router
	PeripheralBus *tlm.Router
	Memory        *memctl.Comp
	DMA           *dma.Comp
	Bridge        *bridge.Comp
	Accel         *accel.Comp

	config  Config
	coefs   []int16
	inputs  []int16
	checked bool

	latency  map[string]*tracing.TotalTimeTracer
	busy     map[string]*tracing.BusyTimeTracer
	dbTracer *tracing.DBTracer
}

// Config returns the configuration of the platform.
func (p *Platform) Config() Config {
	return p.config
}

// Result summarizes a run.
type Result struct {
	EndTime sim.VTime
	Err     error

	// Terminated tells if the program sent the termination signal.
	Terminated bool

	// Checked tells if the output has been compared with the golden model.
	Checked    bool
	Output     []int16
	Expected   []int16
	Mismatches int
	MaxError   int
}

// StopReason describes why the simulation ended.
func (r Result) StopReason() string {
	switch {
	case r.Err != nil:
		return "aborted: " + r.Err.Error()
	case r.Terminated:
		return "terminated"
	default:
		return "no more events"
	}
}

// Passed tells if the run terminated normally with the expected output.
func (r Result) Passed() bool {
	return r.Err == nil && r.Terminated && (!r.Checked || r.Mismatches == 0)
}

// Run runs the simulation to the end.
func (p *Platform) Run() Result {
	err := p.Engine.Run()
	now := p.Engine.CurrentTime()

	p.Engine.Finished()

	for _, t := range p.busy {
		t.TerminateAllTasks()
	}

	if p.dbTracer != nil {
		p.dbTracer.Terminate()
	}

	r := Result{
		EndTime:    now,
		Err:        err,
		Terminated: p.Bridge.Terminated(),
		Checked:    p.checked,
	}

	if p.checked {
		p.check(&r)
	}

	return r
}

// Golden returns the output that the FIR program should produce.
func (p *Platform) Golden() []int16 {
	var out []int16

	offset := 0
	for _, n := range p.config.Layout.Segments {
		seg := p.inputs[offset : offset+n]
		out = append(out, accel.FIR(p.coefs, seg, p.config.Accel.Shift)...)
		offset += n
	}

	return out
}

func (p *Platform) check(r *Result) {
	r.Expected = p.Golden()

	data, err := p.Memory.Storage().Read(
		p.config.Layout.OutputAddr, uint64(2*len(r.Expected)))
	if err != nil {
		r.Mismatches = len(r.Expected)
		return
	}

	r.Output = BytesToSamples(data)

	for i := range r.Expected {
		diff := int(r.Output[i]) - int(r.Expected[i])
		if diff < 0 {
			diff = -diff
		}

		if diff != 0 {
			r.Mismatches++
		}

		r.MaxError = max(r.MaxError, diff)
	}
}
