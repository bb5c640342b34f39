package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

var _ = Describe("API", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *sim.ComponentBase
		tracer   *MockTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = sim.NewComponentBase("Domain")
		tracer = NewMockTracer(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should do nothing without hooks", func() {
		StartTask("1", "", domain, "kind", "what", nil)
		EndTask("1", domain, nil)
	})

	It("should pass tasks to the tracer", func() {
		CollectTrace(domain, tracer)

		tracer.EXPECT().StartTask(gomock.Any()).Do(func(task Task) {
			Expect(task.ID).To(Equal("1"))
			Expect(task.ParentID).To(Equal("0"))
			Expect(task.Kind).To(Equal("kind"))
			Expect(task.What).To(Equal("what"))
			Expect(task.Location).To(Equal("Domain"))
		})
		tracer.EXPECT().StepTask(gomock.Any()).Do(func(task Task) {
			Expect(task.Steps).To(HaveLen(1))
			Expect(task.Steps[0].What).To(Equal("step"))
		})
		tracer.EXPECT().EndTask(gomock.Any()).Do(func(task Task) {
			Expect(task.ID).To(Equal("1"))
		})
		tracer.EXPECT().DelayTask(gomock.Any()).Do(func(d DelayEvent) {
			Expect(d.Source).To(Equal("Domain"))
			Expect(d.Type).To(Equal("stall"))
		})

		StartTask("1", "0", domain, "kind", "what", nil)
		AddTaskStep("1", domain, "step")
		EndTask("1", domain, nil)
		DelayTask("1", domain, "stall", "queue full")
	})

	It("should refuse empty fields", func() {
		CollectTrace(domain, tracer)

		Expect(func() {
			StartTask("", "", domain, "kind", "what", nil)
		}).To(Panic())
		Expect(func() {
			StartTask("1", "", domain, "", "what", nil)
		}).To(Panic())
	})

	It("should not collect with the same tracer twice", func() {
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})

	It("should link the served transaction to the issued one", func() {
		CollectTrace(domain, tracer)
		txn := tlm.NewRead(0x40, 4)

		tracer.EXPECT().StartTask(gomock.Any()).Do(func(task Task) {
			Expect(task.ID).To(Equal(txn.ID + "_out"))
			Expect(task.ParentID).To(Equal("parent"))
			Expect(task.Kind).To(Equal(KindTxnOut))
		})
		tracer.EXPECT().StartTask(gomock.Any()).Do(func(task Task) {
			Expect(task.ID).To(Equal(txn.ID + "@Domain"))
			Expect(task.ParentID).To(Equal(txn.ID + "_out"))
			Expect(task.Kind).To(Equal(KindTxnIn))
			Expect(task.What).To(Equal("Read"))
			Expect(task.Detail).To(BeIdenticalTo(txn))
		})
		tracer.EXPECT().EndTask(gomock.Any()).Times(2)

		TraceTxnInitiate(txn, domain, "parent")
		TraceTxnReceive(txn, domain)
		TraceTxnComplete(txn, domain)
		TraceTxnFinalize(txn, domain)
	})
})
