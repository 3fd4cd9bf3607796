package types

//-------- Queries --------

// QuerierResult is the outer envelope the host writes in response to
// query_chain. Exactly one of the fields is set: Ok when the query reached
// the queried module (which may itself have failed, see QueryResponse),
// Err when the querying system rejected the request.
type QuerierResult struct {
	Ok  *QueryResponse `json:"ok,omitempty"`
	Err *SystemError   `json:"error,omitempty"`
}

// QueryResponse is the queried module's own result: raw response bytes on
// success or the module's error message.
type QueryResponse struct {
	Ok  []byte `json:"ok,omitempty"`
	Err string `json:"error,omitempty"`
}

// RawQuerierResult wraps raw response bytes in a successful QuerierResult.
func RawQuerierResult(data []byte) QuerierResult {
	return QuerierResult{Ok: &QueryResponse{Ok: data}}
}

// SystemErrQuerierResult wraps a SystemError in a failed QuerierResult.
func SystemErrQuerierResult(err SystemError) QuerierResult {
	return QuerierResult{Err: &err}
}
