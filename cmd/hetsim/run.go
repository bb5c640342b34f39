package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/hetsim/accel"
	"github.com/sarchlab/hetsim/monitoring"
	"github.com/sarchlab/hetsim/platform"
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the FIR offload simulation.",
	Long: "`run` builds the platform, runs the host program to the end, " +
		"prints a report, and fails if the output does not match the " +
		"software model.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := runConfig(cmd)
		if err != nil {
			return err
		}

		r, err := simulate(c, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		if !r.Passed() {
			return fmt.Errorf("simulation failed: %s", r.StopReason())
		}

		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.String("config", "", "YAML configuration file")
	f.String("env", ".env", "dotenv file with HETSIM_* overrides")
	f.String("trace-db", "", "write the tasks into this trace database")
	f.String("trace-format", "", "sqlite or csv")
	f.Bool("verbose", false, "log every transaction served by a component")
	f.String("log-level", "", "trace, debug, info, warn, or error")
	f.String("log-format", "", "text or json")
	f.Bool("log-events", false, "log every event handled by the engine")
	f.Bool("monitor", false, "serve the web monitor while running")
	f.Int("monitor-port", 0, "port of the web monitor, random if 0")
	f.Bool("open-browser", false, "open the web monitor in a browser")
}

// runConfig loads the configuration and applies, in order, the environment
// and the flags that are explicitly set.
func runConfig(cmd *cobra.Command) (platform.Config, error) {
	f := cmd.Flags()

	path, _ := f.GetString("config")
	c, err := loadConfig(path)
	if err != nil {
		return c, err
	}

	envFile, _ := f.GetString("env")
	if err := platform.LoadEnv(&c, envFile); err != nil {
		return c, err
	}

	if f.Changed("trace-db") {
		c.Trace.DB, _ = f.GetString("trace-db")
	}

	if f.Changed("trace-format") {
		c.Trace.Format, _ = f.GetString("trace-format")
	}

	if f.Changed("verbose") {
		c.Trace.Transactions, _ = f.GetBool("verbose")
	}

	if f.Changed("log-level") {
		c.Log.Level, _ = f.GetString("log-level")
	}

	if f.Changed("log-format") {
		c.Log.Format, _ = f.GetString("log-format")
	}

	if f.Changed("log-events") {
		c.Log.Events, _ = f.GetBool("log-events")
	}

	if f.Changed("monitor") {
		c.Monitor.Enabled, _ = f.GetBool("monitor")
	}

	if f.Changed("monitor-port") {
		c.Monitor.Port, _ = f.GetInt("monitor-port")
	}

	if f.Changed("open-browser") {
		c.Monitor.OpenBrowser, _ = f.GetBool("open-browser")
	}

	return c, c.Validate()
}

func simulate(
	c platform.Config,
	stdout, stderr io.Writer,
) (platform.Result, error) {
	logger, err := newLogger(stderr, c.Log.Level, c.Log.Format)
	if err != nil {
		return platform.Result{}, err
	}

	slog.SetDefault(logger)

	b := platform.MakeBuilder().WithConfig(c)

	if c.Trace.DB != "" {
		b = b.WithTraceWriter(traceWriter(c.Trace))
	}

	if c.Trace.Transactions {
		b = b.WithTransactionLogger(logger)
	}

	p, err := b.Build()
	if err != nil {
		return platform.Result{}, err
	}

	slog.Info("platform built", "map", p.String())

	if c.Log.Events {
		p.Engine.AcceptHook(sim.NewEventLogger(logger))
	}

	if c.Monitor.Enabled {
		err = startMonitor(p, c.Monitor)
		if err != nil {
			return platform.Result{}, err
		}
	}

	r := p.Run()

	slog.Info("simulation ended",
		sim.TimeAttr(r.EndTime), "reason", r.StopReason())

	p.Report(stdout, r)

	return r, nil
}

func traceWriter(c platform.TraceConfig) tracing.TraceWriter {
	if c.Format == "csv" {
		return tracing.NewCSVTraceWriter(c.DB)
	}

	return tracing.NewSQLiteTraceWriter(c.DB)
}

func startMonitor(p *platform.Platform, c platform.MonitorConfig) error {
	m := monitoring.NewMonitor().WithPortNumber(c.Port)
	m.RegisterSimulation(p.Simulation)

	bar := m.CreateProgressBar("Output samples",
		uint64(p.Config().TotalSamples()))
	p.Bridge.Ports().Output.AcceptHook(monitoring.QueueProgressHook(
		bar, sim.HookPosBufPop, accel.SamplesPerBeat))

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	if c.OpenBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			slog.Warn("cannot open browser", "url", url, "error", err)
		}
	}

	return nil
}
