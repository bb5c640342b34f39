package platform

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hetsim/accel"
	"github.com/sarchlab/hetsim/bridge"
	"github.com/sarchlab/hetsim/mem/memctl"
)

// ErrInvalidConfig is wrapped by all the configuration errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes a platform.
type Config struct {
	Memory  MemoryConfig  `yaml:"memory"`
	DMA     DMAConfig     `yaml:"dma"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Accel   AccelConfig   `yaml:"accel"`
	Layout  LayoutConfig  `yaml:"layout"`
	Trace   TraceConfig   `yaml:"trace"`
	Log     LogConfig     `yaml:"log"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// MemoryConfig describes the memory controller.
type MemoryConfig struct {
	Size    uint64        `yaml:"size"`
	FreqMHz float64       `yaml:"freq_mhz"`
	Timing  memctl.Timing `yaml:"timing"`
}

// DMAConfig describes the DMA engine.
type DMAConfig struct {
	RegisterLatencyNS uint64 `yaml:"register_latency_ns"`
	BufferSize        uint64 `yaml:"buffer_size"`
}

// BridgeConfig describes the bridge and its queues.
type BridgeConfig struct {
	FreqMHz      float64 `yaml:"freq_mhz"`
	ControlDepth int     `yaml:"control_depth"`
	WeightDepth  int     `yaml:"weight_depth"`
	InputDepth   int     `yaml:"input_depth"`
	OutputDepth  int     `yaml:"output_depth"`
}

// AccelConfig describes the accelerator.
type AccelConfig struct {
	FreqMHz float64 `yaml:"freq_mhz"`
	Taps    int     `yaml:"taps"`
	Shift   uint    `yaml:"shift"`
}

// LayoutConfig describes the address map and the data placement used by the
// FIR program. Addresses are seen from the system bus.
type LayoutConfig struct {
	PeripheralBase uint64 `yaml:"peripheral_base"`
	DMAOffset      uint64 `yaml:"dma_offset"`
	BridgeOffset   uint64 `yaml:"bridge_offset"`

	InputAddr  uint64 `yaml:"input_addr"`
	CoefAddr   uint64 `yaml:"coef_addr"`
	OutputAddr uint64 `yaml:"output_addr"`

	Segments       []int  `yaml:"segments"`
	ChunkBytes     uint64 `yaml:"chunk_bytes"`
	PollIntervalNS uint64 `yaml:"poll_interval_ns"`
}

// TraceConfig selects the tracers.
type TraceConfig struct {
	// DB is the path of the trace database, without extension. Empty
	// disables it.
	DB string `yaml:"db"`

	// Format selects the trace writer, "sqlite" or "csv".
	Format string `yaml:"format"`

	// Transactions logs every transaction served by a component.
	Transactions bool `yaml:"transactions"`
}

// LogConfig configures the slog handler of the command line tool.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// Events logs every event handled by the engine.
	Events bool `yaml:"events"`
}

// MonitorConfig configures the web monitor.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// DefaultConfig returns the configuration of the reference system.
func DefaultConfig() Config {
	return Config{
		Memory: MemoryConfig{
			Size:    0x10000,
			FreqMHz: 100,
			Timing:  memctl.DefaultTiming(),
		},
		DMA: DMAConfig{
			RegisterLatencyNS: 1,
			BufferSize:        0x2000,
		},
		Bridge: BridgeConfig{
			FreqMHz:      1000,
			ControlDepth: 1,
			WeightDepth:  4,
			InputDepth:   4,
			OutputDepth:  4,
		},
		Accel: AccelConfig{
			FreqMHz: 1000,
			Taps:    32,
			Shift:   15,
		},
		Layout: LayoutConfig{
			PeripheralBase: 0x1000_0000,
			DMAOffset:      0x0,
			BridgeOffset:   0x1_0000,
			InputAddr:      0x2000,
			CoefAddr:       0x4000,
			OutputAddr:     0x6000,
			Segments:       []int{32, 48},
			ChunkBytes:     32,
			PollIntervalNS: 10,
		},
		Trace: TraceConfig{
			Format: "sqlite",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Monitor: MonitorConfig{
			Port: 0,
		},
	}
}

// LoadConfig reads a YAML file on top of the default configuration.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

// YAML returns the configuration as a YAML document.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// TotalSamples returns the number of samples over all the segments.
func (c Config) TotalSamples() int {
	total := 0
	for _, n := range c.Layout.Segments {
		total += n
	}

	return total
}

// DMABase returns the system address of the DMA registers.
func (c Config) DMABase() uint64 {
	return c.Layout.PeripheralBase + c.Layout.DMAOffset
}

// BridgeBase returns the system address of the bridge window.
func (c Config) BridgeBase() uint64 {
	return c.Layout.PeripheralBase + c.Layout.BridgeOffset
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks that the platform can be built and that the FIR program
// cannot deadlock.
func (c Config) Validate() error {
	if c.Memory.Size == 0 {
		return invalid("memory size is 0")
	}

	if c.Memory.FreqMHz <= 0 || c.Bridge.FreqMHz <= 0 || c.Accel.FreqMHz <= 0 {
		return invalid("frequencies must be positive")
	}

	t := c.Memory.Timing
	if t.CCD <= 0 || t.DataBits <= 0 || t.CL < 0 || t.RCD < 0 || t.RP < 0 {
		return invalid("memory timing %+v", t)
	}

	if c.Bridge.ControlDepth <= 0 || c.Bridge.WeightDepth <= 0 ||
		c.Bridge.InputDepth <= 0 || c.Bridge.OutputDepth <= 0 {
		return invalid("bridge queue depths must be positive")
	}

	if c.Accel.Taps <= 0 || c.Accel.Taps%accel.SamplesPerBeat != 0 {
		return invalid("%d taps is not a positive multiple of %d",
			c.Accel.Taps, accel.SamplesPerBeat)
	}

	if c.Trace.Format != "sqlite" && c.Trace.Format != "csv" {
		return invalid("unknown trace format %q", c.Trace.Format)
	}

	return c.validateLayout()
}

func (c Config) validateLayout() error {
	l := c.Layout

	if len(l.Segments) == 0 {
		return invalid("no segment to filter")
	}

	for i, n := range l.Segments {
		if n <= 0 || n%accel.SamplesPerBeat != 0 {
			return invalid("segment %d has %d samples", i, n)
		}
	}

	if l.ChunkBytes == 0 || l.ChunkBytes%bridge.BeatBytes != 0 {
		return invalid("chunk of %d bytes", l.ChunkBytes)
	}

	beats := l.ChunkBytes / bridge.BeatBytes
	room := uint64(c.Bridge.InputDepth + c.Bridge.OutputDepth + 1)
	if beats > room {
		return invalid("a chunk of %d beats does not fit in the queues (%d beats)",
			beats, room)
	}

	if l.ChunkBytes > c.DMA.BufferSize {
		return invalid("chunk of %d bytes exceeds the DMA buffer", l.ChunkBytes)
	}

	regions := []struct {
		name string
		addr uint64
		size uint64
	}{
		{"input", l.InputAddr, uint64(c.TotalSamples() * 2)},
		{"output", l.OutputAddr, uint64(c.TotalSamples() * 2)},
		{"coefficients", l.CoefAddr, uint64(c.Accel.Taps * 2)},
	}
	for _, r := range regions {
		if r.addr+r.size > c.Memory.Size {
			return invalid("%s [0x%x, 0x%x) is outside the memory",
				r.name, r.addr, r.addr+r.size)
		}
	}

	if l.PeripheralBase < c.Memory.Size {
		return invalid("peripherals at 0x%x overlap the memory", l.PeripheralBase)
	}

	for _, off := range []uint64{l.DMAOffset, l.BridgeOffset} {
		if off+peripheralWindow > peripheralBusSize {
			return invalid("peripheral offset 0x%x is outside the peripheral bus", off)
		}
	}

	if l.DMAOffset < l.BridgeOffset+peripheralWindow &&
		l.BridgeOffset < l.DMAOffset+peripheralWindow {
		return invalid("the DMA and the bridge windows overlap")
	}

	return nil
}
