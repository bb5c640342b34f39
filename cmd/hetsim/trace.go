package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sarchlab/hetsim/tracing"
)

var traceCmd = &cobra.Command{
	Use:   "trace [database]",
	Short: "List the tasks recorded in a trace database.",
	Long: "`trace` prints the tasks recorded by `run --trace-db`, " +
		"optionally filtered by kind and location, or the delays with " +
		"--delays.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return err
		}

		reader := tracing.NewSQLiteTraceReader(args[0])
		reader.Init()
		defer reader.Close()

		kind, _ := cmd.Flags().GetString("kind")
		location, _ := cmd.Flags().GetString("location")
		delays, _ := cmd.Flags().GetBool("delays")

		if delays {
			printDelays(cmd.OutOrStdout(), reader.ListDelays(location))
			return nil
		}

		printTasks(cmd.OutOrStdout(), reader.ListTasks(tracing.TaskQuery{
			Kind:     kind,
			Location: location,
		}))

		return nil
	},
}

func init() {
	traceCmd.Flags().String("kind", "", "only list the tasks of this kind")
	traceCmd.Flags().String("location", "",
		"only list the tasks, or delays, of this component")
	traceCmd.Flags().Bool("delays", false, "list the delays instead of tasks")
}

func printTasks(w io.Writer, tasks []tracing.Task) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Tasks (%d)", len(tasks)))
	t.AppendHeader(table.Row{"ID", "Kind", "What", "Location", "Start", "End"})

	for _, task := range tasks {
		t.AppendRow(table.Row{
			task.ID, task.Kind, task.What, task.Location,
			task.StartTime, task.EndTime,
		})
	}

	t.Render()
}

func printDelays(w io.Writer, delays []tracing.DelayEvent) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Delays (%d)", len(delays)))
	t.AppendHeader(table.Row{"Time", "Source", "Type", "What", "Task"})

	for _, d := range delays {
		t.AppendRow(table.Row{d.Time, d.Source, d.Type, d.What, d.TaskID})
	}

	t.Render()
}
