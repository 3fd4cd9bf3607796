package wazerobind

import (
	"context"
	"errors"
	"fmt"

	wasm "github.com/tetratelabs/wazero/api"

	"github.com/kromsten/cosmwasm/internal/memory"
)

// instance gives the host functions region-level access to one guest
// module's memory, going through the guest's exported allocate/deallocate
// for any buffer the host hands over.
type instance struct {
	mem        wasm.Memory
	allocate   wasm.Function
	deallocate wasm.Function
}

func newInstance(mod wasm.Module) (*instance, error) {
	allocate := mod.ExportedFunction("allocate")
	deallocate := mod.ExportedFunction("deallocate")
	mem := mod.Memory()
	if allocate == nil || deallocate == nil || mem == nil {
		return nil, errors.New("missing required exports: allocate, deallocate, or memory")
	}
	return &instance{mem: mem, allocate: allocate, deallocate: deallocate}, nil
}

// readRegion reads and validates the descriptor at regionPtr.
func (i *instance) readRegion(regionPtr uint32) (memory.Region, error) {
	raw, ok := i.mem.Read(regionPtr, memory.RegionSize)
	if !ok {
		return memory.Region{}, fmt.Errorf("failed to read region descriptor at offset %d", regionPtr)
	}
	region, err := memory.DecodeRegion(raw)
	if err != nil {
		return memory.Region{}, err
	}
	if err := region.Validate(i.mem.Size()); err != nil {
		return memory.Region{}, err
	}
	return region, nil
}

// readRegionData returns the bytes a guest region points at.
func (i *instance) readRegionData(regionPtr uint32) ([]byte, error) {
	region, err := i.readRegion(regionPtr)
	if err != nil {
		return nil, err
	}
	data, ok := i.mem.Read(region.Offset, region.Length)
	if !ok {
		return nil, fmt.Errorf("failed to read %d bytes at offset %d", region.Length, region.Offset)
	}
	// The view aliases the instance memory; copy before handing it to the backend.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (i *instance) readOptionalRegionData(regionPtr uint32) ([]byte, error) {
	if regionPtr == 0 {
		return nil, nil
	}
	return i.readRegionData(regionPtr)
}

// allocateRegion asks the guest for a region of the given capacity, fills
// it and sets its length. Ownership passes to the guest.
func (i *instance) allocateRegion(ctx context.Context, data []byte) (uint32, error) {
	results, err := i.allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("guest allocate failed: %w", err)
	}
	if len(results) == 0 {
		return 0, errors.New("guest allocate returned no results")
	}
	regionPtr := uint32(results[0])
	if err := i.writeToRegion(regionPtr, data); err != nil {
		if _, derr := i.deallocate.Call(ctx, uint64(regionPtr)); derr != nil {
			return 0, fmt.Errorf("%w (deallocate also failed: %v)", err, derr)
		}
		return 0, err
	}
	return regionPtr, nil
}

// writeToRegion fills a guest-allocated write target and updates its length.
func (i *instance) writeToRegion(regionPtr uint32, data []byte) error {
	region, err := i.readRegion(regionPtr)
	if err != nil {
		return err
	}
	if uint32(len(data)) > region.Capacity {
		return fmt.Errorf("region too small: %d bytes for capacity %d", len(data), region.Capacity)
	}
	if !i.mem.Write(region.Offset, data) {
		return fmt.Errorf("failed to write %d bytes at offset %d", len(data), region.Offset)
	}
	region.Length = uint32(len(data))
	if !i.mem.Write(regionPtr, region.Encode()) {
		return fmt.Errorf("failed to update region descriptor at offset %d", regionPtr)
	}
	return nil
}
