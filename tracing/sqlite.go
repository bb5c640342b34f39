package tracing

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/hetsim/sim"
)

// SQLiteTraceWriter is a writer that writes trace data to a SQLite database.
type SQLiteTraceWriter struct {
	*sql.DB

	taskStatement  *sql.Stmt
	delayStatement *sql.Stmt

	dbName            string
	tasksToWriteToDB  []Task
	delaysToWriteToDB []DelayEvent
	batchSize         int
}

// NewSQLiteTraceWriter creates a new SQLiteTraceWriter. The database is
// stored at path + ".sqlite3". If path is empty, a unique name is generated.
func NewSQLiteTraceWriter(path string) *SQLiteTraceWriter {
	if path == "" {
		path = "hetsim_trace_" + xid.New().String()
	}

	w := &SQLiteTraceWriter{
		dbName:    strings.TrimSuffix(path, ".sqlite3") + ".sqlite3",
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// FileName returns the name of the database file.
func (t *SQLiteTraceWriter) FileName() string {
	return t.dbName
}

// Init establishes a connection to the database.
func (t *SQLiteTraceWriter) Init() {
	t.createDatabase()
	t.createTables()
	t.prepareStatements()
}

// Write writes a task to the database.
func (t *SQLiteTraceWriter) Write(task Task) {
	t.tasksToWriteToDB = append(t.tasksToWriteToDB, task)
	if len(t.tasksToWriteToDB) >= t.batchSize {
		t.Flush()
	}
}

// WriteDelay writes a delay event to the database.
func (t *SQLiteTraceWriter) WriteDelay(delay DelayEvent) {
	t.delaysToWriteToDB = append(t.delaysToWriteToDB, delay)
	if len(t.delaysToWriteToDB) >= t.batchSize {
		t.Flush()
	}
}

// Flush writes all the buffered tasks and delays to the database.
func (t *SQLiteTraceWriter) Flush() {
	if t.DB == nil {
		return
	}

	if len(t.tasksToWriteToDB) == 0 && len(t.delaysToWriteToDB) == 0 {
		return
	}

	tx, err := t.Begin()
	if err != nil {
		panic(err)
	}

	taskStmt := tx.Stmt(t.taskStatement)
	for _, task := range t.tasksToWriteToDB {
		_, err := taskStmt.Exec(
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Location,
			task.StartTime.InSec(),
			task.EndTime.InSec(),
		)
		if err != nil {
			panic(fmt.Errorf("cannot insert task %s: %w", task.ID, err))
		}
	}

	delayStmt := tx.Stmt(t.delayStatement)
	for _, d := range t.delaysToWriteToDB {
		_, err := delayStmt.Exec(d.TaskID, d.Type, d.What, d.Source, d.Time.InSec())
		if err != nil {
			panic(fmt.Errorf("cannot insert delay of %s: %w", d.TaskID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	t.tasksToWriteToDB = nil
	t.delaysToWriteToDB = nil
}

func (t *SQLiteTraceWriter) createDatabase() {
	_, err := os.Stat(t.dbName)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", t.dbName))
	}

	db, err := sql.Open("sqlite3", t.dbName)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func (t *SQLiteTraceWriter) createTables() {
	t.mustExecute(`
		create table trace
		(
			task_id    varchar(200) not null,
			parent_id  varchar(200),
			kind       varchar(100),
			what       varchar(100),
			location   varchar(100),
			start_time float        not null,
			end_time   float        default 0
		);
	`)

	for _, col := range []string{
		"task_id", "parent_id", "kind", "location", "start_time", "end_time",
	} {
		t.mustExecute(fmt.Sprintf(
			"create index trace_%s_index on trace (%s);", col, col))
	}

	t.mustExecute(`
		create table delay
		(
			task_id varchar(200),
			type    varchar(100),
			what    varchar(200),
			source  varchar(100),
			time    float
		);
	`)
}

func (t *SQLiteTraceWriter) prepareStatements() {
	stmt, err := t.Prepare(`INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}

	t.taskStatement = stmt

	stmt, err = t.Prepare(
		`INSERT INTO delay (task_id, type, what, source, time) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}

	t.delayStatement = stmt
}

func (t *SQLiteTraceWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		panic(fmt.Errorf("failed to execute %q: %w", query, err))
	}

	return res
}

// SQLiteTraceReader is a reader that reads trace data from a SQLite database.
type SQLiteTraceReader struct {
	*sql.DB

	filename string
}

// NewSQLiteTraceReader creates a new SQLiteTraceReader.
func NewSQLiteTraceReader(filename string) *SQLiteTraceReader {
	r := &SQLiteTraceReader{
		filename: filename,
	}

	return r
}

// Init establishes a connection to the database.
func (r *SQLiteTraceReader) Init() {
	if _, err := os.Stat(r.filename); err != nil {
		panic(err)
	}

	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		panic(err)
	}

	r.DB = db
}

// ListComponents returns a list of components in the trace.
func (r *SQLiteTraceReader) ListComponents() []string {
	var components []string

	rows, err := r.Query("SELECT DISTINCT location FROM trace ORDER BY location")
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	for rows.Next() {
		var component string
		if err := rows.Scan(&component); err != nil {
			panic(err)
		}

		components = append(components, component)
	}

	return components
}

// ListTasks returns a list of tasks in the trace according to the given query,
// ordered by start time.
func (r *SQLiteTraceReader) ListTasks(query TaskQuery) []Task {
	where, args := query.conditions()

	rows, err := r.Query(`
		SELECT task_id, parent_id, kind, what, location, start_time, end_time
		FROM trace`+where+`
		ORDER BY start_time, rowid`, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var (
			t          Task
			start, end float64
		)

		err := rows.Scan(
			&t.ID, &t.ParentID, &t.Kind, &t.What, &t.Location, &start, &end)
		if err != nil {
			panic(err)
		}

		t.StartTime = secToVTime(start)
		t.EndTime = secToVTime(end)
		tasks = append(tasks, t)
	}

	return tasks
}

// ListDelays returns the delays recorded for a source, or all the delays if
// source is empty.
func (r *SQLiteTraceReader) ListDelays(source string) []DelayEvent {
	sqlStr := `SELECT task_id, type, what, source, time FROM delay`
	args := []any{}

	if source != "" {
		sqlStr += ` WHERE source = ?`
		args = append(args, source)
	}

	rows, err := r.Query(sqlStr+` ORDER BY time, rowid`, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	delays := []DelayEvent{}
	for rows.Next() {
		var (
			d DelayEvent
			t float64
		)

		if err := rows.Scan(&d.TaskID, &d.Type, &d.What, &d.Source, &t); err != nil {
			panic(err)
		}

		d.Time = secToVTime(t)
		delays = append(delays, d)
	}

	return delays
}

func secToVTime(s float64) sim.VTime {
	return sim.VTime(s*float64(sim.Sec) + 0.5)
}
