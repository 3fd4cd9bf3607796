package types

// Gas represents the amount of computational resources consumed during execution.
type Gas = uint64

// GasMeter is the host-side view of remaining and burned gas, backing the
// check_gas and gas_evaporate imports.
type GasMeter interface {
	GasRemaining() Gas
	// ConsumeGas burns the given amount, returning an error once the limit
	// is exceeded.
	ConsumeGas(amount Gas, descriptor string) error
}
