// Package vmtest provides an in-process host environment for exercising the
// boundary protocol without a wasm runtime: a linear memory arena and a mock
// host whose storage, crypto and query capabilities behave like a real VM's,
// including its numeric error codes.
package vmtest

import (
	"encoding/json"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"

	cosmwasm "github.com/kromsten/cosmwasm"
	"github.com/kromsten/cosmwasm/internal/hostcrypto"
	"github.com/kromsten/cosmwasm/internal/hostiter"
	"github.com/kromsten/cosmwasm/internal/memory"
	"github.com/kromsten/cosmwasm/internal/sections"
	"github.com/kromsten/cosmwasm/types"
)

// QuerierFunc answers chain queries on behalf of the mock host.
type QuerierFunc func(request []byte) types.QuerierResult

// MockHost implements cosmwasm.Host against the same memory manager the
// guest uses, so regions move between both sides exactly as they would
// through a real VM. Any host-side failure is a panic: the mock host has no
// error channel, just like the numeric calling convention.
type MockHost struct {
	mem       *memory.Manager
	db        dbm.DB
	iterators *hostiter.Table
	api       types.GoAPI
	meter     *GasMeter
	querier   QuerierFunc

	// rawQueryResponse, when set, is written verbatim for query_chain,
	// bypassing the querier. Useful for malformed-response tests.
	rawQueryResponse []byte
	// forced maps a call name to a result code returned without doing any
	// work, for driving specific rows of the code tables.
	forced map[string]uint32
	// scanFails makes db_scan return the failure id 0.
	scanFails bool

	// DebugMessages records every debug call, in order.
	DebugMessages []string
	// AbortMessage holds the message of the abort call, if any.
	AbortMessage string

	calls map[string]int
}

var _ cosmwasm.Host = (*MockHost)(nil)

// HostOption configures a MockHost.
type HostOption func(*MockHost)

// WithDB replaces the default in-memory database.
func WithDB(db dbm.DB) HostOption {
	return func(h *MockHost) { h.db = db }
}

// WithGoAPI replaces the default mock address scheme.
func WithGoAPI(api types.GoAPI) HostOption {
	return func(h *MockHost) { h.api = api }
}

// WithGasMeter replaces the default meter.
func WithGasMeter(meter *GasMeter) HostOption {
	return func(h *MockHost) { h.meter = meter }
}

// WithQuerier installs the chain query handler.
func WithQuerier(querier QuerierFunc) HostOption {
	return func(h *MockHost) { h.querier = querier }
}

// NewMockHost creates a mock host over the guest's memory manager.
func NewMockHost(mem *cosmwasm.MemoryManager, opts ...HostOption) *MockHost {
	h := &MockHost{
		mem:       mem,
		db:        dbm.NewMemDB(),
		iterators: hostiter.New(),
		api:       NewMockGoAPI(),
		meter:     NewGasMeter(1_000_000),
		querier: func([]byte) types.QuerierResult {
			return types.SystemErrQuerierResult(types.SystemError{Unknown: &types.Unknown{}})
		},
		forced: make(map[string]uint32),
		calls:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewEnvironment wires a fresh linear memory, guest environment and mock
// host together.
func NewEnvironment(opts ...HostOption) (*cosmwasm.Environment, *MockHost) {
	env := cosmwasm.NewEnvironment(NewLinearMemory())
	host := NewMockHost(env.Memory(), opts...)
	env.BindHost(host)
	return env, host
}

// CallCount returns how often the named host call was invoked.
func (h *MockHost) CallCount(name string) int {
	return h.calls[name]
}

// ForceResult makes the named call return code without doing any work. For
// the packed-return calls the code is placed in the high half.
func (h *MockHost) ForceResult(name string, code uint32) {
	h.forced[name] = code
}

// FailScans makes db_scan report failure.
func (h *MockHost) FailScans() {
	h.scanFails = true
}

// SetRawQueryResponse makes query_chain write these bytes verbatim.
func (h *MockHost) SetRawQueryResponse(response []byte) {
	h.rawQueryResponse = response
}

// Close releases all host-side cursors.
func (h *MockHost) Close() {
	h.iterators.CloseAll()
}

// ---- storage ----

func (h *MockHost) DBRead(keyPtr uint32) uint32 {
	h.record("db_read")
	key := h.readRegionData(keyPtr)
	value, err := h.db.Get(key)
	if err != nil {
		panic(fmt.Sprintf("mock host: db get: %v", err))
	}
	if value == nil {
		return 0
	}
	return h.buildRegion(value)
}

func (h *MockHost) DBWrite(keyPtr, valuePtr uint32) {
	h.record("db_write")
	key := h.readRegionData(keyPtr)
	value := h.readRegionData(valuePtr)
	if len(value) == 0 {
		// The guest-side wrapper must have rejected this already.
		panic("mock host: db_write with empty value")
	}
	if err := h.db.Set(key, value); err != nil {
		panic(fmt.Sprintf("mock host: db set: %v", err))
	}
}

func (h *MockHost) DBRemove(keyPtr uint32) {
	h.record("db_remove")
	key := h.readRegionData(keyPtr)
	if err := h.db.Delete(key); err != nil {
		panic(fmt.Sprintf("mock host: db delete: %v", err))
	}
}

func (h *MockHost) DBScan(startPtr, endPtr uint32, order int32) uint32 {
	h.record("db_scan")
	if h.scanFails {
		return 0
	}
	start := h.readOptionalRegionData(startPtr)
	end := h.readOptionalRegionData(endPtr)

	var (
		iter dbm.Iterator
		err  error
	)
	switch types.Order(order) {
	case types.Ascending:
		iter, err = h.db.Iterator(start, end)
	case types.Descending:
		iter, err = h.db.ReverseIterator(start, end)
	default:
		return 0
	}
	if err != nil {
		panic(fmt.Sprintf("mock host: db iterator: %v", err))
	}
	return h.iterators.Store(iter)
}

func (h *MockHost) DBNext(iteratorID uint32) uint32 {
	h.record("db_next")
	iter, ok := h.iterators.Get(iteratorID)
	if !ok {
		panic(fmt.Sprintf("mock host: db_next for unknown iterator %d", iteratorID))
	}
	if !iter.Valid() {
		// Exhausted: the empty key is the end-of-sequence sentinel.
		return h.buildRegion(sections.Encode([][]byte{{}, {}}))
	}
	pair := sections.Encode([][]byte{iter.Key(), iter.Value()})
	iter.Next()
	return h.buildRegion(pair)
}

// ---- addresses ----

func (h *MockHost) AddrValidate(sourcePtr uint32) uint32 {
	h.record("addr_validate")
	input := string(h.readRegionData(sourcePtr))
	if err := h.api.ValidateAddress(input); err != nil {
		return h.buildRegion([]byte(err.Error()))
	}
	return 0
}

func (h *MockHost) AddrCanonicalize(sourcePtr, destinationPtr uint32) uint32 {
	h.record("addr_canonicalize")
	input := string(h.readRegionData(sourcePtr))
	canonical, err := h.api.CanonicalizeAddress(input)
	if err != nil {
		return h.buildRegion([]byte(err.Error()))
	}
	h.writeToRegion(destinationPtr, canonical)
	return 0
}

func (h *MockHost) AddrHumanize(sourcePtr, destinationPtr uint32) uint32 {
	h.record("addr_humanize")
	canonical := h.readRegionData(sourcePtr)
	human, err := h.api.HumanizeAddress(canonical)
	if err != nil {
		return h.buildRegion([]byte(err.Error()))
	}
	h.writeToRegion(destinationPtr, []byte(human))
	return 0
}

// ---- crypto ----

func (h *MockHost) Secp256k1Verify(hashPtr, signaturePtr, publicKeyPtr uint32) uint32 {
	h.record("secp256k1_verify")
	if code, ok := h.forced["secp256k1_verify"]; ok {
		return code
	}
	return hostcrypto.Secp256k1Verify(
		h.readRegionData(hashPtr),
		h.readRegionData(signaturePtr),
		h.readRegionData(publicKeyPtr),
	)
}

func (h *MockHost) Secp256k1RecoverPubkey(hashPtr, signaturePtr uint32, recoveryParam uint32) uint64 {
	h.record("secp256k1_recover_pubkey")
	if code, ok := h.forced["secp256k1_recover_pubkey"]; ok {
		return uint64(code) << 32
	}
	pubkey, code := hostcrypto.Secp256k1RecoverPubkey(
		h.readRegionData(hashPtr),
		h.readRegionData(signaturePtr),
		recoveryParam,
	)
	return h.packedResult(pubkey, code)
}

func (h *MockHost) Secp256k1Sign(messagePtr, privateKeyPtr uint32) uint64 {
	h.record("secp256k1_sign")
	if code, ok := h.forced["secp256k1_sign"]; ok {
		return uint64(code) << 32
	}
	signature, code := hostcrypto.Secp256k1Sign(
		h.readRegionData(messagePtr),
		h.readRegionData(privateKeyPtr),
	)
	return h.packedResult(signature, code)
}

func (h *MockHost) Ed25519Verify(messagePtr, signaturePtr, publicKeyPtr uint32) uint32 {
	h.record("ed25519_verify")
	if code, ok := h.forced["ed25519_verify"]; ok {
		return code
	}
	return hostcrypto.Ed25519Verify(
		h.readRegionData(messagePtr),
		h.readRegionData(signaturePtr),
		h.readRegionData(publicKeyPtr),
	)
}

func (h *MockHost) Ed25519BatchVerify(messagesPtr, signaturesPtr, publicKeysPtr uint32) uint32 {
	h.record("ed25519_batch_verify")
	if code, ok := h.forced["ed25519_batch_verify"]; ok {
		return code
	}
	messages := h.decodeSections(messagesPtr)
	signatures := h.decodeSections(signaturesPtr)
	publicKeys := h.decodeSections(publicKeysPtr)
	return hostcrypto.Ed25519BatchVerify(messages, signatures, publicKeys)
}

func (h *MockHost) Ed25519Sign(messagePtr, privateKeyPtr uint32) uint64 {
	h.record("ed25519_sign")
	if code, ok := h.forced["ed25519_sign"]; ok {
		return uint64(code) << 32
	}
	signature, code := hostcrypto.Ed25519Sign(
		h.readRegionData(messagePtr),
		h.readRegionData(privateKeyPtr),
	)
	return h.packedResult(signature, code)
}

// ---- misc ----

func (h *MockHost) Debug(messagePtr uint32) {
	h.record("debug")
	h.DebugMessages = append(h.DebugMessages, string(h.readRegionData(messagePtr)))
}

func (h *MockHost) QueryChain(requestPtr uint32) uint32 {
	h.record("query_chain")
	request := h.readRegionData(requestPtr)
	if h.rawQueryResponse != nil {
		return h.buildRegion(h.rawQueryResponse)
	}
	response, err := json.Marshal(h.querier(request))
	if err != nil {
		panic(fmt.Sprintf("mock host: marshal query result: %v", err))
	}
	return h.buildRegion(response)
}

func (h *MockHost) CheckGas() uint64 {
	h.record("check_gas")
	if code, ok := h.forced["check_gas"]; ok {
		return uint64(code)
	}
	return h.meter.GasRemaining()
}

func (h *MockHost) GasEvaporate(amount uint32) uint32 {
	h.record("gas_evaporate")
	if code, ok := h.forced["gas_evaporate"]; ok {
		return code
	}
	if err := h.meter.ConsumeGas(uint64(amount), "evaporate"); err != nil {
		return 1
	}
	return 0
}

func (h *MockHost) Abort(messagePtr uint32) {
	h.record("abort")
	h.AbortMessage = string(h.readRegionData(messagePtr))
	panic("mock host: guest abort: " + h.AbortMessage)
}

// ---- guest memory access ----

func (h *MockHost) record(name string) {
	h.calls[name]++
}

// readRegionData reads the bytes a guest region points at. The region stays
// owned by the guest.
func (h *MockHost) readRegionData(regionPtr uint32) []byte {
	region, err := h.mem.ReadRegion(regionPtr)
	if err != nil {
		panic(fmt.Sprintf("mock host: read region at %d: %v", regionPtr, err))
	}
	data, err := h.mem.Read(region.Offset, region.Length)
	if err != nil {
		panic(fmt.Sprintf("mock host: read region data: %v", err))
	}
	return data
}

func (h *MockHost) readOptionalRegionData(regionPtr uint32) []byte {
	if regionPtr == 0 {
		return nil
	}
	return h.readRegionData(regionPtr)
}

// buildRegion allocates a result region in guest memory, as a real host
// does through the guest's allocate export. Ownership passes to the guest,
// which consumes it exactly once.
func (h *MockHost) buildRegion(data []byte) uint32 {
	regionPtr, err := h.mem.BuildRegion(data)
	if err != nil {
		panic(fmt.Sprintf("mock host: allocate result region: %v", err))
	}
	return regionPtr
}

// writeToRegion fills a guest-allocated write target and updates its length.
func (h *MockHost) writeToRegion(regionPtr uint32, data []byte) {
	region, err := h.mem.ReadRegion(regionPtr)
	if err != nil {
		panic(fmt.Sprintf("mock host: read write target at %d: %v", regionPtr, err))
	}
	if uint32(len(data)) > region.Capacity {
		panic(fmt.Sprintf("mock host: write target too small: %d > %d", len(data), region.Capacity))
	}
	if err := h.mem.Write(region.Offset, data); err != nil {
		panic(fmt.Sprintf("mock host: write region data: %v", err))
	}
	region.Length = uint32(len(data))
	if err := h.mem.WriteRegion(regionPtr, region); err != nil {
		panic(fmt.Sprintf("mock host: update region length: %v", err))
	}
}

// packedResult encodes a (region, code) pair into the packed dual-return
// word: code in the high half, region address in the low half.
func (h *MockHost) packedResult(data []byte, code uint32) uint64 {
	if code != hostcrypto.CodeOK {
		return uint64(code) << 32
	}
	return uint64(h.buildRegion(data))
}

func (h *MockHost) decodeSections(regionPtr uint32) [][]byte {
	sects, err := sections.Decode(h.readRegionData(regionPtr))
	if err != nil {
		panic(fmt.Sprintf("mock host: malformed sections: %v", err))
	}
	return sects
}
