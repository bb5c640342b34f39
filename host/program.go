package host

import (
	"fmt"

	"github.com/sarchlab/hetsim/accel"
	"github.com/sarchlab/hetsim/bridge"
	"github.com/sarchlab/hetsim/dma"
	"github.com/sarchlab/hetsim/sim"
)

// FIRLayout tells a FIR program where things are.
type FIRLayout struct {
	DMABase    uint64
	BridgeBase uint64

	CoefAddr   uint64
	InputAddr  uint64
	OutputAddr uint64

	// Taps is the number of 16-bit coefficients.
	Taps int

	// Segments lists the number of samples of each independent run of the
	// filter. The filter history is cleared between segments.
	Segments []int

	// ChunkBytes is the largest block moved by one DMA transfer.
	ChunkBytes uint64

	PollInterval sim.VTime
}

const sampleBytes = 2

// DMATransfer programs a DMA engine and waits for the transfer to finish.
func (h *Host) DMATransfer(dmaBase, src, dst, length uint64) error {
	if err := h.Write64(dmaBase+dma.RegSource, src); err != nil {
		return err
	}

	if err := h.Write64(dmaBase+dma.RegDestination, dst); err != nil {
		return err
	}

	return h.Write64(dmaBase+dma.RegLength, length)
}

func (l FIRLayout) validate() error {
	if l.Taps <= 0 || l.Taps%accel.SamplesPerBeat != 0 {
		return fmt.Errorf("%d taps is not a positive multiple of %d",
			l.Taps, accel.SamplesPerBeat)
	}

	if l.ChunkBytes == 0 || l.ChunkBytes%bridge.BeatBytes != 0 {
		return fmt.Errorf("chunk of %d bytes is not a positive multiple of %d",
			l.ChunkBytes, bridge.BeatBytes)
	}

	for i, n := range l.Segments {
		if n <= 0 || n%accel.SamplesPerBeat != 0 {
			return fmt.Errorf("segment %d: %d samples is not a positive multiple of %d",
				i, n, accel.SamplesPerBeat)
		}
	}

	return nil
}

// FIRProgram loads the coefficients into the accelerator, streams every
// segment through it chunk by chunk, and finally sends the termination
// signal.
func FIRProgram(l FIRLayout) Program {
	return func(h *Host) error {
		if err := l.validate(); err != nil {
			return err
		}

		ctrl := l.BridgeBase + bridge.OffsetControl

		if err := h.Write64(ctrl, uint64(accel.CtrlArm)); err != nil {
			return fmt.Errorf("arm: %w", err)
		}

		err := h.DMATransfer(l.DMABase,
			l.CoefAddr, l.BridgeBase+bridge.OffsetWeight,
			uint64(l.Taps*sampleBytes))
		if err != nil {
			return fmt.Errorf("load coefficients: %w", err)
		}

		err = h.Poll64(l.BridgeBase+bridge.OffsetStatus,
			uint64(accel.StatusStreaming), l.PollInterval)
		if err != nil {
			return fmt.Errorf("wait for streaming: %w", err)
		}

		var offset uint64
		for i, n := range l.Segments {
			if i > 0 {
				if err := h.Write64(ctrl, uint64(accel.CtrlRearm)); err != nil {
					return fmt.Errorf("rearm: %w", err)
				}
			}

			if err := h.streamSegment(l, offset, uint64(n*sampleBytes)); err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}

			offset += uint64(n * sampleBytes)
		}

		return h.Write64(ctrl, bridge.CtrlTerminate)
	}
}

func (h *Host) streamSegment(l FIRLayout, offset, length uint64) error {
	for done := uint64(0); done < length; done += l.ChunkBytes {
		n := min(l.ChunkBytes, length-done)

		err := h.DMATransfer(l.DMABase,
			l.InputAddr+offset+done, l.BridgeBase+bridge.OffsetInput, n)
		if err != nil {
			return err
		}

		err = h.DMATransfer(l.DMABase,
			l.BridgeBase+bridge.OffsetOutput, l.OutputAddr+offset+done, n)
		if err != nil {
			return err
		}
	}

	return nil
}
