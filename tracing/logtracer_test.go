package tracing

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

var _ = Describe("LogTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		buf        *bytes.Buffer
		tracer     *LogTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		buf = new(bytes.Buffer)
		logger := slog.New(slog.NewJSONHandler(buf,
			&slog.HandlerOptions{Level: sim.LevelTrace}))
		tracer = NewLogTracer(timeTeller, logger)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should log finished transactions", func() {
		txn := tlm.NewWrite(0x2000, []byte{0x0f, 0x01})
		txn.Complete(tlm.Ok)

		gomock.InOrder(
			timeTeller.EXPECT().CurrentTime().Return(10*sim.NS),
			timeTeller.EXPECT().CurrentTime().Return(30*sim.NS),
		)

		tracer.StartTask(Task{ID: "t", Location: "Mem", Detail: txn})
		tracer.EndTask(Task{ID: "t", Location: "Mem", Detail: txn})

		out := buf.String()
		Expect(out).To(ContainSubstring(`"time_ps":30000`))
		Expect(out).To(ContainSubstring(`"component":"Mem"`))
		Expect(out).To(ContainSubstring(`"command":"Write"`))
		Expect(out).To(ContainSubstring(`"address":"0x2000"`))
		Expect(out).To(ContainSubstring(`"length":2`))
		Expect(out).To(ContainSubstring(`"data":"0x010f"`))
		Expect(out).To(ContainSubstring(`"latency_ps":20000`))
	})

	It("should log delays", func() {
		timeTeller.EXPECT().CurrentTime().Return(5 * sim.NS)

		tracer.DelayTask(DelayEvent{
			TaskID: "t", Type: "stall", What: "Bridge.Input full", Source: "Bridge",
		})

		Expect(buf.String()).To(ContainSubstring(`"what":"Bridge.Input full"`))
	})

	It("should skip filtered tasks", func() {
		tracer.WithFilter(KindFilter(KindTxnIn))

		tracer.StartTask(Task{ID: "t", Kind: KindTxnOut})
		tracer.EndTask(Task{ID: "t"})

		Expect(buf.Len()).To(Equal(0))
	})
})
