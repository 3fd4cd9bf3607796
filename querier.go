package cosmwasm

import (
	"encoding/json"

	"github.com/kromsten/cosmwasm/types"
)

// ExternalQuerier is a stateless wrapper around the query_chain import.
type ExternalQuerier struct {
	env *Environment
}

// RawQuery sends opaque request bytes to the chain and decodes the host's
// JSON response envelope. A response that cannot be decoded becomes an
// InvalidResponse system error carrying the raw bytes; it is part of the
// returned envelope, not a Go error, so callers handle all outcomes in one
// place.
func (q *ExternalQuerier) RawQuery(request []byte) types.QuerierResult {
	requestPtr := q.env.mustBuildRegion(request)
	responsePtr := q.env.host.QueryChain(requestPtr)
	q.env.mustFreeRegion(requestPtr)

	response := q.env.mustConsumeRegion(responsePtr)
	var result types.QuerierResult
	if err := json.Unmarshal(response, &result); err != nil {
		return types.SystemErrQuerierResult(types.SystemError{
			InvalidResponse: &types.InvalidResponse{Err: err.Error(), Response: response},
		})
	}
	return result
}
