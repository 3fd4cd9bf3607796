package vmtest

import (
	"fmt"

	"github.com/kromsten/cosmwasm/types"
)

// GasMeter tracks consumption against a fixed limit, the way the host's
// metering does.
type GasMeter struct {
	limit    types.Gas
	consumed types.Gas
}

var _ types.GasMeter = (*GasMeter)(nil)

// NewGasMeter creates a meter with the given limit.
func NewGasMeter(limit types.Gas) *GasMeter {
	return &GasMeter{limit: limit}
}

// GasRemaining returns the gas left before the limit is hit.
func (g *GasMeter) GasRemaining() types.Gas {
	if g.consumed >= g.limit {
		return 0
	}
	return g.limit - g.consumed
}

// GasConsumed returns the total gas burned so far.
func (g *GasMeter) GasConsumed() types.Gas {
	return g.consumed
}

// ConsumeGas burns the given amount, failing once the limit is exceeded.
func (g *GasMeter) ConsumeGas(amount types.Gas, descriptor string) error {
	g.consumed += amount
	if g.consumed > g.limit {
		return fmt.Errorf("out of gas: %s", descriptor)
	}
	return nil
}
