package platform

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/hetsim/accel"
	"github.com/sarchlab/hetsim/bridge"
	"github.com/sarchlab/hetsim/dma"
	"github.com/sarchlab/hetsim/host"
	"github.com/sarchlab/hetsim/mem/memctl"
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
	"github.com/sarchlab/hetsim/tracing"
)

// peripheralWindow is the size of the address window of each peripheral, and
// of the peripheral bus on the system bus.
const peripheralWindow = 0x1000

// peripheralBusSize is the span of the peripheral bus on the system bus.
const peripheralBusSize = 0x100_0000

// Builder can build platforms.
type Builder struct {
	config      Config
	coefs       []int16
	inputs      []int16
	program     host.Program
	traceWriter tracing.TraceWriter
	txnLogger   *slog.Logger
}

// MakeBuilder returns a Builder with the default configuration and data.
func MakeBuilder() Builder {
	return Builder{
		config: DefaultConfig(),
		coefs:  Coefficients,
		inputs: InputSamples,
	}
}

// WithConfig sets the configuration.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// WithCoefficients sets the coefficients placed in memory.
func (b Builder) WithCoefficients(c []int16) Builder {
	b.coefs = c
	return b
}

// WithInputs sets the samples placed in memory.
func (b Builder) WithInputs(s []int16) Builder {
	b.inputs = s
	return b
}

// WithProgram replaces the FIR program run by the host. The output is not
// checked against the golden model when a custom program runs.
func (b Builder) WithProgram(p host.Program) Builder {
	b.program = p
	return b
}

// WithTraceWriter records every task and delay with the writer.
func (b Builder) WithTraceWriter(w tracing.TraceWriter) Builder {
	b.traceWriter = w
	return b
}

// WithTransactionLogger logs every transaction served by a component.
func (b Builder) WithTransactionLogger(l *slog.Logger) Builder {
	b.txnLogger = l
	return b
}

// Build creates a platform.
func (b Builder) Build() (*Platform, error) {
	c := b.config
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if len(b.coefs) != c.Accel.Taps {
		return nil, invalid("%d coefficients for %d taps", len(b.coefs), c.Accel.Taps)
	}

	total := c.TotalSamples()
	if len(b.inputs) < total {
		return nil, invalid("%d input samples, segments need %d", len(b.inputs), total)
	}

	p := &Platform{
		config:  c,
		coefs:   b.coefs,
		inputs:  b.inputs[:total],
		checked: b.program == nil,
		Engine:  sim.NewSerialEngine(),
		latency: make(map[string]*tracing.TotalTimeTracer),
		busy:    make(map[string]*tracing.BusyTimeTracer),
	}
	p.Simulation = sim.NewSimulation(p.Engine)

	b.buildComponents(p)
	b.buildHost(p)
	b.registerComponents(p)
	b.attachTracers(p)

	return p, nil
}

func (b Builder) buildComponents(p *Platform) {
	c := p.config

	p.Memory = memctl.MakeBuilder().
		WithFreq(sim.Freq(c.Memory.FreqMHz) * sim.MHz).
		WithMemorySize(c.Memory.Size).
		WithTiming(c.Memory.Timing).
		WithPreload(c.Layout.InputAddr, SamplesToBytes(p.inputs)).
		WithPreload(c.Layout.CoefAddr, SamplesToBytes(p.coefs)).
		Build("Memory")

	p.SystemBus = tlm.NewRouter("SystemBus")
	p.PeripheralBus = tlm.NewRouter("PeripheralBus")

	p.DMA = dma.MakeBuilder().
		WithEngine(p.Engine).
		WithBus(p.SystemBus).
		WithRegisterLatency(sim.VTime(c.DMA.RegisterLatencyNS) * sim.NS).
		WithBufferSize(c.DMA.BufferSize).
		Build("DMA")

	p.Bridge = bridge.MakeBuilder().
		WithEngine(p.Engine).
		WithFreq(sim.Freq(c.Bridge.FreqMHz) * sim.MHz).
		WithQueueDepths(
			c.Bridge.ControlDepth,
			c.Bridge.WeightDepth,
			c.Bridge.InputDepth,
			c.Bridge.OutputDepth,
		).
		Build("Bridge")

	p.Accel = accel.MakeBuilder().
		WithEngine(p.Engine).
		WithFreq(sim.Freq(c.Accel.FreqMHz) * sim.MHz).
		WithTaps(c.Accel.Taps).
		WithShift(c.Accel.Shift).
		WithPorts(p.Bridge.Ports()).
		Build("Accel")
	p.Bridge.SetStatusSource(p.Accel)

	p.SystemBus.Map(0, c.Memory.Size, p.Memory)
	p.SystemBus.Map(c.Layout.PeripheralBase, peripheralBusSize, p.PeripheralBus)
	p.PeripheralBus.Map(c.Layout.DMAOffset, peripheralWindow, p.DMA)
	p.PeripheralBus.Map(c.Layout.BridgeOffset, peripheralWindow, p.Bridge)
}

func (b Builder) buildHost(p *Platform) {
	c := p.config

	program := b.program
	if program == nil {
		program = host.FIRProgram(host.FIRLayout{
			DMABase:      c.DMABase(),
			BridgeBase:   c.BridgeBase(),
			CoefAddr:     c.Layout.CoefAddr,
			InputAddr:    c.Layout.InputAddr,
			OutputAddr:   c.Layout.OutputAddr,
			Taps:         c.Accel.Taps,
			Segments:     c.Layout.Segments,
			ChunkBytes:   c.Layout.ChunkBytes,
			PollInterval: sim.VTime(c.Layout.PollIntervalNS) * sim.NS,
		})
	}

	p.Host = host.MakeBuilder().
		WithEngine(p.Engine).
		WithBus(p.SystemBus).
		WithProgram(program).
		Build("Host")
}

func (b Builder) registerComponents(p *Platform) {
	for _, comp := range []sim.Component{
		p.Host,
		p.SystemBus,
		p.PeripheralBus,
		p.Memory,
		p.DMA,
		p.Bridge,
		p.Accel,
	} {
		p.Simulation.RegisterComponent(comp)
	}
}

func (b Builder) attachTracers(p *Platform) {
	targets := []tracing.NamedHookable{p.Memory, p.DMA, p.Bridge}

	for _, t := range targets {
		tracer := tracing.NewTotalTimeTracer(p.Engine,
			tracing.KindFilter(tracing.KindTxnIn))
		tracing.CollectTrace(t, tracer)
		p.latency[t.Name()] = tracer

		busy := tracing.NewBusyTimeTracer(p.Engine,
			tracing.KindFilter(tracing.KindTxnIn))
		tracing.CollectTrace(t, busy)
		p.busy[t.Name()] = busy
	}

	if b.txnLogger != nil {
		logTracer := tracing.NewLogTracer(p.Engine, b.txnLogger).
			WithFilter(tracing.KindFilter(tracing.KindTxnIn))
		for _, t := range targets {
			tracing.CollectTrace(t, logTracer)
		}
	}

	if b.traceWriter != nil {
		p.dbTracer = tracing.NewDBTracer(p.Engine, b.traceWriter)
		for _, t := range append(targets, p.Host, p.Accel) {
			tracing.CollectTrace(t, p.dbTracer)
		}
	}
}

// String describes the address map.
func (p *Platform) String() string {
	c := p.config

	return fmt.Sprintf(
		"memory [0x0, 0x%x), dma 0x%x, bridge 0x%x",
		c.Memory.Size, c.DMABase(), c.BridgeBase())
}
