package tracing

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter is a task tracer that can store the tasks into a CSV file.
// The tasks go to path + ".csv" and the delays to path + "_delays.csv".
type CSVTraceWriter struct {
	path string

	taskFile, delayFile     *os.File
	taskWriter, delayWriter *csv.Writer

	tasks      []Task
	delays     []DelayEvent
	bufferSize int
}

// NewCSVTraceWriter creates a new CSVTraceWriter. If path is empty, a unique
// name is generated.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	if path == "" {
		path = "hetsim_trace_" + xid.New().String()
	}

	return &CSVTraceWriter{
		path:       strings.TrimSuffix(path, ".csv"),
		bufferSize: 1000,
	}
}

// FileName returns the name of the task file.
func (t *CSVTraceWriter) FileName() string {
	return t.path + ".csv"
}

// DelayFileName returns the name of the delay file.
func (t *CSVTraceWriter) DelayFileName() string {
	return t.path + "_delays.csv"
}

// Init creates the tracing csv files. Existing files are overwritten.
func (t *CSVTraceWriter) Init() {
	t.taskFile, t.taskWriter = createCSV(t.FileName(), []string{
		"ID", "ParentID", "Kind", "What", "Location", "StartPS", "EndPS",
	})
	t.delayFile, t.delayWriter = createCSV(t.DelayFileName(), []string{
		"TaskID", "Type", "What", "Source", "TimePS",
	})

	atexit.Register(func() {
		t.Flush()

		if err := t.taskFile.Close(); err != nil {
			panic(err)
		}

		if err := t.delayFile.Close(); err != nil {
			panic(err)
		}
	})
}

func createCSV(name string, header []string) (*os.File, *csv.Writer) {
	file, err := os.Create(name)
	if err != nil {
		panic(err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		panic(err)
	}

	return file, w
}

// Write writes a task to the CSV file.
func (t *CSVTraceWriter) Write(task Task) {
	t.tasks = append(t.tasks, task)
	if len(t.tasks) >= t.bufferSize {
		t.Flush()
	}
}

// WriteDelay writes a delay to the delay file.
func (t *CSVTraceWriter) WriteDelay(delay DelayEvent) {
	t.delays = append(t.delays, delay)
	if len(t.delays) >= t.bufferSize {
		t.Flush()
	}
}

// Flush flushes the tasks and the delays to the CSV files.
func (t *CSVTraceWriter) Flush() {
	for _, task := range t.tasks {
		t.mustWrite(t.taskWriter, []string{
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Location,
			strconv.FormatUint(uint64(task.StartTime), 10),
			strconv.FormatUint(uint64(task.EndTime), 10),
		})
	}

	for _, d := range t.delays {
		t.mustWrite(t.delayWriter, []string{
			d.TaskID,
			d.Type,
			d.What,
			d.Source,
			strconv.FormatUint(uint64(d.Time), 10),
		})
	}

	t.tasks = nil
	t.delays = nil

	for _, w := range []*csv.Writer{t.taskWriter, t.delayWriter} {
		w.Flush()
		if err := w.Error(); err != nil {
			panic(err)
		}
	}
}

func (t *CSVTraceWriter) mustWrite(w *csv.Writer, record []string) {
	if err := w.Write(record); err != nil {
		panic(err)
	}
}
