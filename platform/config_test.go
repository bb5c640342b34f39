package platform

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	It("should accept the default configuration", func() {
		Expect(DefaultConfig().Validate()).To(Succeed())
	})

	It("should place the peripherals after the memory", func() {
		c := DefaultConfig()

		Expect(c.DMABase()).To(Equal(uint64(0x1000_0000)))
		Expect(c.BridgeBase()).To(Equal(uint64(0x1001_0000)))
		Expect(c.TotalSamples()).To(Equal(80))
	})

	DescribeTable("invalid configurations",
		func(modify func(c *Config)) {
			c := DefaultConfig()
			modify(&c)

			Expect(errors.Is(c.Validate(), ErrInvalidConfig)).To(BeTrue())
		},
		Entry("empty memory", func(c *Config) { c.Memory.Size = 0 }),
		Entry("zero frequency", func(c *Config) { c.Bridge.FreqMHz = 0 }),
		Entry("zero CCD", func(c *Config) { c.Memory.Timing.CCD = 0 }),
		Entry("zero queue depth", func(c *Config) { c.Bridge.InputDepth = 0 }),
		Entry("odd taps", func(c *Config) { c.Accel.Taps = 30 }),
		Entry("no segment", func(c *Config) { c.Layout.Segments = nil }),
		Entry("partial beat segment", func(c *Config) { c.Layout.Segments = []int{6} }),
		Entry("partial beat chunk", func(c *Config) { c.Layout.ChunkBytes = 12 }),
		Entry("chunk larger than the queues", func(c *Config) { c.Layout.ChunkBytes = 80 }),
		Entry("output beyond memory", func(c *Config) { c.Layout.OutputAddr = 0xfff0 }),
		Entry("peripherals inside memory", func(c *Config) { c.Layout.PeripheralBase = 0x8000 }),
		Entry("overlapping peripherals", func(c *Config) { c.Layout.BridgeOffset = 0x800 }),
		Entry("unknown trace format", func(c *Config) { c.Trace.Format = "xml" }),
	)

	Context("when loading from a file", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		write := func(content string) string {
			path := filepath.Join(dir, "hetsim.yaml")
			Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

			return path
		}

		It("should override the defaults", func() {
			path := write(`
memory:
  size: 0x20000
  timing:
    cl: 3
layout:
  segments: [16, 16]
trace:
  db: out
`)

			c, err := LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Memory.Size).To(Equal(uint64(0x20000)))
			Expect(c.Memory.Timing.CL).To(Equal(3))
			Expect(c.Memory.Timing.RP).To(Equal(3))
			Expect(c.Layout.Segments).To(Equal([]int{16, 16}))
			Expect(c.Layout.InputAddr).To(Equal(uint64(0x2000)))
			Expect(c.Trace.DB).To(Equal("out"))
		})

		It("should fail on a missing file", func() {
			_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))

			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("should fail on malformed YAML", func() {
			_, err := LoadConfig(write("memory: [1, 2"))

			Expect(err).To(HaveOccurred())
		})

		It("should validate the result", func() {
			_, err := LoadConfig(write("accel:\n  taps: 3\n"))

			Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
		})

		It("should read back its own YAML", func() {
			c := DefaultConfig()
			c.Layout.Segments = []int{8}

			data, err := c.YAML()
			Expect(err).NotTo(HaveOccurred())

			loaded, err := LoadConfig(write(string(data)))
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		})
	})
})

var _ = Describe("LoadEnv", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		for _, key := range []string{EnvTraceDB, EnvMonitorPort, EnvLogLevel} {
			if v, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, v)
				Expect(os.Unsetenv(key)).To(Succeed())
			}
		}
	})

	It("should read a dotenv file", func() {
		path := filepath.Join(dir, ".env")
		Expect(os.WriteFile(path, []byte(
			"HETSIM_TRACE_DB=trace\nHETSIM_MONITOR_PORT=8080\nHETSIM_LOG_LEVEL=trace\n",
		), 0o644)).To(Succeed())

		c := DefaultConfig()
		Expect(LoadEnv(&c, path)).To(Succeed())

		Expect(c.Trace.DB).To(Equal("trace"))
		Expect(c.Monitor.Port).To(Equal(8080))
		Expect(c.Log.Level).To(Equal("trace"))
	})

	It("should prefer the process environment", func() {
		path := filepath.Join(dir, ".env")
		Expect(os.WriteFile(path, []byte("HETSIM_TRACE_DB=file\n"), 0o644)).
			To(Succeed())
		Expect(os.Setenv(EnvTraceDB, "process")).To(Succeed())
		DeferCleanup(os.Unsetenv, EnvTraceDB)

		c := DefaultConfig()
		Expect(LoadEnv(&c, path)).To(Succeed())

		Expect(c.Trace.DB).To(Equal("process"))
	})

	It("should skip missing files", func() {
		c := DefaultConfig()

		Expect(LoadEnv(&c, filepath.Join(dir, "missing.env"))).To(Succeed())
		Expect(c).To(Equal(DefaultConfig()))
	})

	It("should refuse a bad port", func() {
		Expect(os.Setenv(EnvMonitorPort, "http")).To(Succeed())
		DeferCleanup(os.Unsetenv, EnvMonitorPort)

		c := DefaultConfig()

		Expect(errors.Is(LoadEnv(&c), ErrInvalidConfig)).To(BeTrue())
	})
})
