package cosmwasm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kromsten/cosmwasm/types"
	"github.com/kromsten/cosmwasm/vmtest"
)

func TestRawQuerySuccess(t *testing.T) {
	querier := func(request []byte) types.QuerierResult {
		var parsed map[string]string
		if err := json.Unmarshal(request, &parsed); err != nil {
			return types.SystemErrQuerierResult(types.SystemError{
				InvalidRequest: &types.InvalidRequest{Err: err.Error(), Request: request},
			})
		}
		return types.RawQuerierResult([]byte(`{"balance":"42"}`))
	}
	env, host := vmtest.NewEnvironment(vmtest.WithQuerier(querier))
	defer host.Close()

	result := env.Querier().RawQuery([]byte(`{"denom":"atom"}`))
	require.Nil(t, result.Err)
	require.NotNil(t, result.Ok)
	require.Empty(t, result.Ok.Err)
	require.JSONEq(t, `{"balance":"42"}`, string(result.Ok.Ok))

	require.Equal(t, 1, host.CallCount("query_chain"))
	require.Equal(t, 0, env.Memory().Allocator().LiveAllocations())
}

func TestRawQueryModuleError(t *testing.T) {
	querier := func([]byte) types.QuerierResult {
		return types.QuerierResult{Ok: &types.QueryResponse{Err: "no such denom"}}
	}
	env, host := vmtest.NewEnvironment(vmtest.WithQuerier(querier))
	defer host.Close()

	result := env.Querier().RawQuery([]byte(`{}`))
	require.Nil(t, result.Err)
	require.NotNil(t, result.Ok)
	require.Equal(t, "no such denom", result.Ok.Err)
}

func TestRawQuerySystemError(t *testing.T) {
	querier := func([]byte) types.QuerierResult {
		return types.SystemErrQuerierResult(types.SystemError{
			NoSuchContract: &types.NoSuchContract{Addr: "nowhere"},
		})
	}
	env, host := vmtest.NewEnvironment(vmtest.WithQuerier(querier))
	defer host.Close()

	result := env.Querier().RawQuery([]byte(`{}`))
	require.Nil(t, result.Ok)
	require.NotNil(t, result.Err)
	require.NotNil(t, result.Err.NoSuchContract)
	require.Equal(t, "nowhere", result.Err.NoSuchContract.Addr)
}

func TestRawQueryDefaultQuerier(t *testing.T) {
	env, host := vmtest.NewEnvironment()
	defer host.Close()

	result := env.Querier().RawQuery([]byte(`{}`))
	require.NotNil(t, result.Err)
	require.NotNil(t, result.Err.Unknown)
}

func TestRawQueryMalformedResponse(t *testing.T) {
	env, host := vmtest.NewEnvironment()
	defer host.Close()
	malformed := []byte("this is not json")
	host.SetRawQueryResponse(malformed)

	result := env.Querier().RawQuery([]byte(`{}`))
	require.Nil(t, result.Ok)
	require.NotNil(t, result.Err)
	require.NotNil(t, result.Err.InvalidResponse)
	require.Equal(t, malformed, result.Err.InvalidResponse.Response)
	require.NotEmpty(t, result.Err.InvalidResponse.Err)
}
