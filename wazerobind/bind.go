// Package wazerobind exposes the host side of the guest boundary as a
// wazero "env" import module. A contract compiled against the guest
// bindings imports these functions; Register wires them to a Backend
// holding the chain-side implementations.
package wazerobind

import (
	"context"
	"encoding/json"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/kromsten/cosmwasm/internal/hostcrypto"
	"github.com/kromsten/cosmwasm/internal/hostiter"
	"github.com/kromsten/cosmwasm/internal/sections"
	"github.com/kromsten/cosmwasm/types"
)

// QuerierFunc answers a raw query request with an already-enveloped result.
type QuerierFunc func(request []byte) types.QuerierResult

// Backend holds everything the host functions need to serve one contract
// instance. All fields except Logger are required.
type Backend struct {
	DB      dbm.DB
	API     types.GoAPI
	Querier QuerierFunc
	Gas     types.GasMeter
	Logger  *zap.Logger

	iterators *hostiter.Table
}

// NewBackend wires the given stores into a Backend ready for Register.
func NewBackend(db dbm.DB, goapi types.GoAPI, querier QuerierFunc, gas types.GasMeter, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		DB:        db,
		API:       goapi,
		Querier:   querier,
		Gas:       gas,
		Logger:    logger,
		iterators: hostiter.New(),
	}
}

// Close releases any iterators still open on this backend.
func (b *Backend) Close() {
	if b.iterators != nil {
		b.iterators.CloseAll()
	}
}

// Register builds the "env" host module for the given backend and compiles
// it into the runtime. The returned module must be instantiated before any
// contract module that imports it.
func Register(ctx context.Context, runtime wazero.Runtime, backend *Backend) (wazero.CompiledModule, error) {
	if backend.iterators == nil {
		backend.iterators = hostiter.New()
	}
	builder := runtime.NewHostModuleBuilder("env")

	registerStorageFunctions(builder, backend)
	registerIteratorFunctions(builder, backend)
	registerAddressFunctions(builder, backend)
	registerCryptoFunctions(builder, backend)
	registerQueryFunctions(builder, backend)
	registerGasFunctions(builder, backend)
	registerDebugFunctions(builder, backend)

	return builder.Compile(ctx)
}

// trap aborts the current guest call. wazero turns the panic into a
// trapped error on the contract invocation.
func trap(err error) {
	panic(err)
}

func registerStorageFunctions(builder wazero.HostModuleBuilder, backend *Backend) {
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, keyPtr uint32) uint32 {
			inst, key := mustReadArg(m, keyPtr)
			value, err := backend.DB.Get(key)
			if err != nil {
				trap(fmt.Errorf("db_read: %w", err))
			}
			if value == nil {
				return 0
			}
			return mustAllocate(ctx, inst, value)
		}).
		Export("db_read")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, keyPtr, valuePtr uint32) {
			_, key := mustReadArg(m, keyPtr)
			_, value := mustReadArg(m, valuePtr)
			if err := backend.DB.Set(key, value); err != nil {
				trap(fmt.Errorf("db_write: %w", err))
			}
		}).
		Export("db_write")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, keyPtr uint32) {
			_, key := mustReadArg(m, keyPtr)
			if err := backend.DB.Delete(key); err != nil {
				trap(fmt.Errorf("db_remove: %w", err))
			}
		}).
		Export("db_remove")
}

func registerIteratorFunctions(builder wazero.HostModuleBuilder, backend *Backend) {
	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, startPtr, endPtr uint32, order int32) uint32 {
			inst := mustInstance(m)
			start, err := inst.readOptionalRegionData(startPtr)
			if err != nil {
				trap(fmt.Errorf("db_scan: %w", err))
			}
			end, err := inst.readOptionalRegionData(endPtr)
			if err != nil {
				trap(fmt.Errorf("db_scan: %w", err))
			}
			var iter dbm.Iterator
			switch types.Order(order) {
			case types.Ascending:
				iter, err = backend.DB.Iterator(start, end)
			case types.Descending:
				iter, err = backend.DB.ReverseIterator(start, end)
			default:
				return 0
			}
			if err != nil || iter == nil {
				return 0
			}
			return backend.iterators.Store(iter)
		}).
		Export("db_scan")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, iteratorID uint32) uint32 {
			inst := mustInstance(m)
			pair := [][]byte{{}, {}}
			if iter, ok := backend.iterators.Get(iteratorID); ok && iter.Valid() {
				pair = [][]byte{iter.Key(), iter.Value()}
				iter.Next()
			}
			return mustAllocate(ctx, inst, sections.Encode(pair))
		}).
		Export("db_next")
}

func registerAddressFunctions(builder wazero.HostModuleBuilder, backend *Backend) {
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, sourcePtr uint32) uint32 {
			inst, source := mustReadArg(m, sourcePtr)
			if err := backend.API.ValidateAddress(string(source)); err != nil {
				return mustAllocate(ctx, inst, []byte(err.Error()))
			}
			return 0
		}).
		Export("addr_validate")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, sourcePtr, destinationPtr uint32) uint32 {
			inst, source := mustReadArg(m, sourcePtr)
			canonical, err := backend.API.CanonicalizeAddress(string(source))
			if err != nil {
				return mustAllocate(ctx, inst, []byte(err.Error()))
			}
			if err := inst.writeToRegion(destinationPtr, canonical); err != nil {
				trap(fmt.Errorf("addr_canonicalize: %w", err))
			}
			return 0
		}).
		Export("addr_canonicalize")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, sourcePtr, destinationPtr uint32) uint32 {
			inst, source := mustReadArg(m, sourcePtr)
			human, err := backend.API.HumanizeAddress(source)
			if err != nil {
				return mustAllocate(ctx, inst, []byte(err.Error()))
			}
			if err := inst.writeToRegion(destinationPtr, []byte(human)); err != nil {
				trap(fmt.Errorf("addr_humanize: %w", err))
			}
			return 0
		}).
		Export("addr_humanize")
}

func registerCryptoFunctions(builder wazero.HostModuleBuilder, backend *Backend) {
	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, hashPtr, signaturePtr, publicKeyPtr uint32) uint32 {
			_, hash := mustReadArg(m, hashPtr)
			_, signature := mustReadArg(m, signaturePtr)
			_, publicKey := mustReadArg(m, publicKeyPtr)
			return hostcrypto.Secp256k1Verify(hash, signature, publicKey)
		}).
		Export("secp256k1_verify")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, hashPtr, signaturePtr, recoveryParam uint32) uint64 {
			inst, hash := mustReadArg(m, hashPtr)
			_, signature := mustReadArg(m, signaturePtr)
			publicKey, code := hostcrypto.Secp256k1RecoverPubkey(hash, signature, recoveryParam)
			if code != hostcrypto.CodeOK {
				return uint64(code) << 32
			}
			return uint64(mustAllocate(ctx, inst, publicKey))
		}).
		Export("secp256k1_recover_pubkey")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, messagePtr, privateKeyPtr uint32) uint64 {
			inst, message := mustReadArg(m, messagePtr)
			_, privateKey := mustReadArg(m, privateKeyPtr)
			signature, code := hostcrypto.Secp256k1Sign(message, privateKey)
			if code != hostcrypto.CodeOK {
				return uint64(code) << 32
			}
			return uint64(mustAllocate(ctx, inst, signature))
		}).
		Export("secp256k1_sign")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, messagePtr, signaturePtr, publicKeyPtr uint32) uint32 {
			_, message := mustReadArg(m, messagePtr)
			_, signature := mustReadArg(m, signaturePtr)
			_, publicKey := mustReadArg(m, publicKeyPtr)
			return hostcrypto.Ed25519Verify(message, signature, publicKey)
		}).
		Export("ed25519_verify")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, messagesPtr, signaturesPtr, publicKeysPtr uint32) uint32 {
			_, packedMessages := mustReadArg(m, messagesPtr)
			_, packedSignatures := mustReadArg(m, signaturesPtr)
			_, packedPublicKeys := mustReadArg(m, publicKeysPtr)
			messages, err := sections.Decode(packedMessages)
			if err != nil {
				return hostcrypto.CodeGenericErr
			}
			signatures, err := sections.Decode(packedSignatures)
			if err != nil {
				return hostcrypto.CodeGenericErr
			}
			publicKeys, err := sections.Decode(packedPublicKeys)
			if err != nil {
				return hostcrypto.CodeGenericErr
			}
			return hostcrypto.Ed25519BatchVerify(messages, signatures, publicKeys)
		}).
		Export("ed25519_batch_verify")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, messagePtr, privateKeyPtr uint32) uint64 {
			inst, message := mustReadArg(m, messagePtr)
			_, privateKey := mustReadArg(m, privateKeyPtr)
			signature, code := hostcrypto.Ed25519Sign(message, privateKey)
			if code != hostcrypto.CodeOK {
				return uint64(code) << 32
			}
			return uint64(mustAllocate(ctx, inst, signature))
		}).
		Export("ed25519_sign")
}

func registerQueryFunctions(builder wazero.HostModuleBuilder, backend *Backend) {
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, requestPtr uint32) uint32 {
			inst, request := mustReadArg(m, requestPtr)
			result := backend.Querier(request)
			response, err := json.Marshal(result)
			if err != nil {
				trap(fmt.Errorf("query_chain: %w", err))
			}
			return mustAllocate(ctx, inst, response)
		}).
		Export("query_chain")
}

func registerGasFunctions(builder wazero.HostModuleBuilder, backend *Backend) {
	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module) uint64 {
			return uint64(backend.Gas.GasRemaining())
		}).
		Export("check_gas")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, _ api.Module, amount uint32) uint32 {
			if err := backend.Gas.ConsumeGas(types.Gas(amount), "evaporate"); err != nil {
				return 1
			}
			return 0
		}).
		Export("gas_evaporate")
}

func registerDebugFunctions(builder wazero.HostModuleBuilder, backend *Backend) {
	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, messagePtr uint32) {
			_, message := mustReadArg(m, messagePtr)
			backend.Logger.Debug(string(message))
		}).
		Export("debug")

	builder.NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, messagePtr uint32) {
			message := "<unreadable abort message>"
			if inst, err := newInstance(m); err == nil {
				if data, err := inst.readRegionData(messagePtr); err == nil {
					message = string(data)
				}
			}
			backend.Logger.Error("contract aborted", zap.String("message", message))
			panic(fmt.Sprintf("contract aborted: %s", message))
		}).
		Export("abort")
}

func mustInstance(m api.Module) *instance {
	inst, err := newInstance(m)
	if err != nil {
		trap(err)
	}
	return inst
}

func mustReadArg(m api.Module, regionPtr uint32) (*instance, []byte) {
	inst := mustInstance(m)
	data, err := inst.readRegionData(regionPtr)
	if err != nil {
		trap(err)
	}
	return inst, data
}

func mustAllocate(ctx context.Context, inst *instance, data []byte) uint32 {
	regionPtr, err := inst.allocateRegion(ctx, data)
	if err != nil {
		trap(err)
	}
	return regionPtr
}
