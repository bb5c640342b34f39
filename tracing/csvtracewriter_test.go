package tracing

import (
	"encoding/csv"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hetsim/sim"
)

func readCSV(name string) [][]string {
	f, err := os.Open(name)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	Expect(err).NotTo(HaveOccurred())

	return records
}

var _ = Describe("CSVTraceWriter", func() {
	It("should write tasks and delays", func() {
		w := NewCSVTraceWriter(filepath.Join(GinkgoT().TempDir(), "trace.csv"))
		w.Init()

		w.Write(Task{
			ID:        "1",
			Kind:      KindTxnIn,
			What:      "Write",
			Location:  "DMA, 0",
			StartTime: 2 * sim.NS,
			EndTime:   5 * sim.NS,
		})
		w.WriteDelay(DelayEvent{
			TaskID: "1",
			Type:   "queue_full",
			What:   "Bridge.Input",
			Source: "Bridge",
			Time:   3 * sim.NS,
		})
		w.Flush()

		Expect(filepath.Base(w.FileName())).To(Equal("trace.csv"))

		tasks := readCSV(w.FileName())
		Expect(tasks).To(HaveLen(2))
		Expect(tasks[1]).To(Equal([]string{
			"1", "", KindTxnIn, "Write", "DMA, 0", "2000", "5000",
		}))

		delays := readCSV(w.DelayFileName())
		Expect(delays).To(HaveLen(2))
		Expect(delays[1]).To(Equal([]string{
			"1", "queue_full", "Bridge.Input", "Bridge", "3000",
		}))
	})
})
