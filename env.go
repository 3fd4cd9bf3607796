package cosmwasm

import (
	"go.uber.org/zap"

	"github.com/kromsten/cosmwasm/debuglog"
	"github.com/kromsten/cosmwasm/internal/memory"
)

// Environment bundles the guest's linear memory with a Host and hands out
// the typed wrappers. One Environment serves one guest invocation; there is
// no concurrent use of its memory.
type Environment struct {
	mem  *memory.Manager
	host Host
}

// NewEnvironment creates an Environment over the given linear memory. A Host
// must be bound before any wrapper is used.
func NewEnvironment(mem Memory) *Environment {
	return &Environment{mem: memory.NewManager(mem)}
}

// BindHost attaches the host implementation. In-process hosts are typically
// constructed against Memory() first, then bound here.
func (e *Environment) BindHost(host Host) {
	e.host = host
}

// Memory returns the guest memory manager, giving in-process hosts the same
// access to guest memory that a real VM has.
func (e *Environment) Memory() *MemoryManager {
	return e.mem
}

// Storage returns the storage wrapper.
func (e *Environment) Storage() *ExternalStorage {
	return &ExternalStorage{env: e}
}

// API returns the address/crypto wrapper.
func (e *Environment) API() *ExternalAPI {
	return &ExternalAPI{env: e}
}

// Querier returns the chain query wrapper.
func (e *Environment) Querier() *ExternalQuerier {
	return &ExternalQuerier{env: e}
}

// Debug hands a message to the host's debug sink. Best effort; the host may
// discard it.
func (e *Environment) Debug(message string) {
	regionPtr := e.mustBuildRegion([]byte(message))
	e.host.Debug(regionPtr)
	e.mustFreeRegion(regionPtr)
}

// Logger returns a zap logger whose sink is the host debug call.
func (e *Environment) Logger(opts ...debuglog.Option) *zap.Logger {
	return debuglog.New(e.Debug, opts...)
}

// Abort reports a fatal condition to the host and terminates the guest. It
// is used for host-contract violations, where continuing would operate on an
// assumption already known false. It never returns.
func (e *Environment) Abort(message string) {
	// Best effort: the abort import itself needs a region, which may be what
	// just failed.
	if regionPtr, err := e.mem.BuildRegion([]byte(message)); err == nil {
		e.host.Abort(regionPtr)
	}
	panic("guest aborted: " + message)
}

// The must* helpers wrap the memory protocol operations. Failures here mean
// the guest's own memory bookkeeping is broken or the host wrote an invalid
// region, neither of which is recoverable.

func (e *Environment) mustBuildRegion(data []byte) uint32 {
	regionPtr, err := e.mem.BuildRegion(data)
	if err != nil {
		e.Abort("failed to stage region: " + err.Error())
	}
	return regionPtr
}

func (e *Environment) mustBuildOptionalRegion(data []byte) uint32 {
	regionPtr, err := e.mem.BuildOptionalRegion(data)
	if err != nil {
		e.Abort("failed to stage optional region: " + err.Error())
	}
	return regionPtr
}

func (e *Environment) mustAlloc(capacity uint32) uint32 {
	regionPtr, err := e.mem.Alloc(capacity)
	if err != nil {
		e.Abort("failed to allocate write target: " + err.Error())
	}
	return regionPtr
}

func (e *Environment) mustConsumeRegion(regionPtr uint32) []byte {
	data, err := e.mem.ConsumeRegion(regionPtr)
	if err != nil {
		e.Abort("failed to consume region: " + err.Error())
	}
	return data
}

// mustConsumeString reads a string region written by the host. The host is
// trusted to produce valid UTF-8.
func (e *Environment) mustConsumeString(regionPtr uint32) string {
	return string(e.mustConsumeRegion(regionPtr))
}

func (e *Environment) mustFreeRegion(regionPtr uint32) {
	if err := e.mem.FreeRegion(regionPtr); err != nil {
		e.Abort("failed to release region: " + err.Error())
	}
}

func (e *Environment) mustFreeOptionalRegion(regionPtr uint32) {
	if regionPtr == 0 {
		return
	}
	e.mustFreeRegion(regionPtr)
}
