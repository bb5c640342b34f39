package platform

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	return t
}

// Report prints the result and the statistics of every component.
func (p *Platform) Report(w io.Writer, r Result) {
	p.reportSummary(w, r)
	p.reportComponents(w)
	p.reportLatency(w, r)
	p.reportQueues(w)
}

func (p *Platform) reportSummary(w io.Writer, r Result) {
	t := newTable(w, "Summary")

	t.AppendRow(table.Row{"End time", r.EndTime})
	t.AppendRow(table.Row{"Stop reason", r.StopReason()})
	t.AppendRow(table.Row{"Host finished", p.Host.Finished()})

	golden := "not checked"
	if r.Checked {
		golden = fmt.Sprintf("%d of %d samples differ, max error %d",
			r.Mismatches, len(r.Expected), r.MaxError)
	}
	t.AppendRow(table.Row{"Golden check", golden})

	verdict := "FAIL"
	if r.Passed() {
		verdict = "PASS"
	}
	t.AppendRow(table.Row{"Verdict", verdict})

	t.Render()
}

func (p *Platform) reportComponents(w io.Writer) {
	t := newTable(w, "Components")
	t.AppendHeader(table.Row{"Component", "Metric", "Value"})

	m := p.Memory.Stats()
	t.AppendRows([]table.Row{
		{"Memory", "reads", m.Reads},
		{"Memory", "writes", m.Writes},
		{"Memory", "first accesses", m.FirstAccesses},
		{"Memory", "row hits", m.RowHits},
		{"Memory", "row misses", m.RowMisses},
		{"Memory", "bytes read", m.BytesRead},
		{"Memory", "bytes written", m.BytesWritten},
		{"Memory", "errors", m.Errors},
		{"Memory", "busy time", m.BusyTime},
	})
	t.AppendSeparator()

	d := p.DMA.Stats()
	t.AppendRows([]table.Row{
		{"DMA", "transfers", d.Transfers},
		{"DMA", "failed transfers", d.FailedTransfer},
		{"DMA", "bytes moved", d.BytesMoved},
		{"DMA", "busy time", d.BusyTime},
	})
	t.AppendSeparator()

	b := p.Bridge.Stats()
	t.AppendRows([]table.Row{
		{"Bridge", "requests", b.Requests},
		{"Bridge", "beats", b.Beats},
		{"Bridge", "stalls", b.Stalls},
		{"Bridge", "errors", b.Errors},
	})
	t.AppendSeparator()

	a := p.Accel.Stats()
	t.AppendRows([]table.Row{
		{"Accel", "arms", a.Arms},
		{"Accel", "rearms", a.Rearms},
		{"Accel", "input beats", a.InputBeats},
		{"Accel", "saturated samples", a.Saturations},
	})
	t.AppendSeparator()

	h := p.Host.Stats()
	t.AppendRows([]table.Row{
		{"Host", "reads", h.Reads},
		{"Host", "writes", h.Writes},
		{"Host", "failures", h.Failures},
	})

	t.Render()
}

func (p *Platform) reportLatency(w io.Writer, r Result) {
	t := newTable(w, "Transaction latency")
	t.AppendHeader(table.Row{
		"Component", "Count", "Average", "Total", "Busy", "Utilization",
	})

	names := make([]string, 0, len(p.latency))
	for name := range p.latency {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tracer := p.latency[name]
		busy := p.busy[name].BusyTime()

		utilization := "-"
		if r.EndTime > 0 {
			utilization = fmt.Sprintf("%.1f%%",
				100*float64(busy)/float64(r.EndTime))
		}

		t.AppendRow(table.Row{
			name, tracer.Count(), tracer.AverageTime(), tracer.TotalTime(),
			busy, utilization,
		})
	}

	t.Render()
}

func (p *Platform) reportQueues(w io.Writer) {
	t := newTable(w, "Queues")
	t.AppendHeader(table.Row{"Queue", "Size", "Capacity"})

	for _, q := range p.Simulation.Queues() {
		capacity := fmt.Sprint(q.Capacity())
		if q.Capacity() <= 0 {
			capacity = "unbounded"
		}

		t.AppendRow(table.Row{q.Name(), q.Size(), capacity})
	}

	t.Render()
}
