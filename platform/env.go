package platform

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration.
const (
	EnvTraceDB     = "HETSIM_TRACE_DB"
	EnvMonitorPort = "HETSIM_MONITOR_PORT"
	EnvLogLevel    = "HETSIM_LOG_LEVEL"
)

// LoadEnv applies the environment overrides to c. Values come from the
// process environment first and then from the given dotenv files, of which
// missing ones are skipped.
func LoadEnv(c *Config, files ...string) error {
	values := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return err
		}

		maps.Copy(values, m)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := values[key]

		return v, ok
	}

	if v, ok := lookup(EnvTraceDB); ok {
		c.Trace.DB = v
	}

	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}

	if v, ok := lookup(EnvMonitorPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return invalid("%s=%q is not a port", EnvMonitorPort, v)
		}

		c.Monitor.Port = port
	}

	return nil
}
