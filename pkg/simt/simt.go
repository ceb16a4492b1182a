// Package simt runs data-parallel kernels the way a GPU schedules compute
// work: invocations are grouped into subgroup-sized workgroups, lanes within
// a subgroup can exchange data through collective operations, and a dispatch
// only returns once every invocation has retired. Consecutive dispatches are
// therefore separated by a full memory barrier; the only cross-workgroup
// primitive available inside a dispatch is sync/atomic.
package simt

import "sync"

// DefaultSubgroupSize matches the subgroup width of common desktop GPUs.
const DefaultSubgroupSize = 32

// Device schedules dispatches with a fixed subgroup size.
type Device struct {
	subgroupSize int
}

// NewDevice creates a device with the given subgroup size.
// Sizes below 1 fall back to DefaultSubgroupSize.
func NewDevice(subgroupSize int) *Device {
	if subgroupSize < 1 {
		subgroupSize = DefaultSubgroupSize
	}
	return &Device{subgroupSize: subgroupSize}
}

// Default returns a device with the default subgroup size.
func Default() *Device {
	return NewDevice(DefaultSubgroupSize)
}

// SubgroupSize returns the subgroup width of this device.
func (d *Device) SubgroupSize() uint32 {
	return uint32(d.subgroupSize)
}

// WorkgroupCount returns the number of workgroups needed to cover the given
// invocation count. One workgroup holds exactly one subgroup.
func (d *Device) WorkgroupCount(invocations uint32) uint32 {
	s := uint32(d.subgroupSize)
	return (invocations + s - 1) / s
}

// Dispatch runs workgroupCount workgroups of one subgroup each and blocks
// until all invocations retire. Every lane of every workgroup executes the
// kernel; kernels guard global writes with their own invocation-count checks.
//
// Control flow around collective operations must be uniform across the lanes
// that reach them: a lane that returns early simply stops participating, but
// lanes must not call different collectives in the same phase.
func (d *Device) Dispatch(workgroupCount uint32, kernel func(*Invocation)) {
	var outer sync.WaitGroup
	for w := uint32(0); w < workgroupCount; w++ {
		outer.Add(1)
		go func(w uint32) {
			defer outer.Done()
			runWorkgroup(w, d.subgroupSize, kernel)
		}(w)
	}
	outer.Wait()
}

// Invocation identifies one lane of a running dispatch and carries the
// subgroup state used by the collective operations.
type Invocation struct {
	wg   *workgroup
	lane int
}

// GlobalID returns the dispatch-wide invocation index.
func (inv *Invocation) GlobalID() uint32 {
	return inv.wg.id*uint32(inv.wg.size) + uint32(inv.lane)
}

// WorkgroupID returns the index of this invocation's workgroup.
func (inv *Invocation) WorkgroupID() uint32 {
	return inv.wg.id
}

// LaneID returns the invocation's index within its subgroup.
func (inv *Invocation) LaneID() uint32 {
	return uint32(inv.lane)
}

// SubgroupSize returns the subgroup width.
func (inv *Invocation) SubgroupSize() uint32 {
	return uint32(inv.wg.size)
}

type workgroup struct {
	id      uint32
	size    int
	scratch []any
	bar     barrier
}

func runWorkgroup(id uint32, size int, kernel func(*Invocation)) {
	wg := &workgroup{
		id:      id,
		size:    size,
		scratch: make([]any, size),
	}
	wg.bar.init(size)

	var lanes sync.WaitGroup
	for lane := 0; lane < size; lane++ {
		lanes.Add(1)
		go func(lane int) {
			defer lanes.Done()
			kernel(&Invocation{wg: wg, lane: lane})
			wg.bar.leave(lane)
		}(lane)
	}
	lanes.Wait()
}
