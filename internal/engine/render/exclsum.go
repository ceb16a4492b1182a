// Package render implements the compute pipelines behind the renderer:
// exclusive prefix sums, bounding-sphere reduction, mesh culling with
// indirect draw generation, and the raster and ray-traced shading paths.
// Each pipeline is a fixed sequence of device dispatches over flat buffers;
// a dispatch boundary is the only ordering guarantee between stages.
package render

import (
	"github.com/hollowpoint-games/hollowpoint/pkg/simt"
)

// ExclusiveSumPipeline computes exclusive prefix sums of u32 buffers in two
// dispatches: a reduce pass producing per-workgroup totals, then a scan pass
// combining each lane's local exclusive sum with the carry of all earlier
// workgroups.
type ExclusiveSumPipeline struct {
	dev *simt.Device
}

// NewExclusiveSumPipeline creates the pipeline on the given device.
func NewExclusiveSumPipeline(dev *simt.Device) *ExclusiveSumPipeline {
	return &ExclusiveSumPipeline{dev: dev}
}

// AlignInputCount rounds a count up to the device subgroup size. Callers
// size and zero-pad their input buffers to this count before recording.
func (p *ExclusiveSumPipeline) AlignInputCount(inputCount uint32) uint32 {
	sg := p.dev.SubgroupSize()
	return (inputCount + sg - 1) / sg * sg
}

// Compute writes the exclusive prefix sum of input to output. len(input)
// must be a multiple of the subgroup size (see AlignInputCount) and output
// must be at least as long as input.
func (p *ExclusiveSumPipeline) Compute(input, output []uint32) {
	inputCount := uint32(len(input))
	if inputCount == 0 {
		return
	}

	sg := p.dev.SubgroupSize()
	if inputCount%sg != 0 {
		panic("render: exclusive sum input not aligned to subgroup size")
	}

	workgroupCount := inputCount / sg

	// The last workgroup's total is never consumed, so the reduce pass
	// covers one fewer workgroup than the scan pass.
	reduceCount := workgroupCount - 1
	workgroupTotals := make([]uint32, max32(reduceCount, 1))

	if reduceCount > 0 {
		p.dev.Dispatch(reduceCount, func(inv *simt.Invocation) {
			total := simt.Sum(inv, input[inv.GlobalID()])
			if simt.Elect(inv) {
				workgroupTotals[inv.WorkgroupID()] = total
			}
		})
	}

	p.dev.Dispatch(workgroupCount, func(inv *simt.Invocation) {
		// Earlier workgroup totals, partitioned across the lanes and
		// combined with one subgroup add.
		var partial uint32
		for i := inv.LaneID(); i < inv.WorkgroupID(); i += inv.SubgroupSize() {
			partial += workgroupTotals[i]
		}
		carry := simt.Sum(inv, partial)

		local := simt.ExclusiveSum(inv, input[inv.GlobalID()])
		output[inv.GlobalID()] = carry + local
	})
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
