// Package errs defines the error shapes the API returns.
//
// Two families exist:
//   - HTTPError: transport-level failures (unknown route, unhealthy
//     dependency, rejected credentials) rendered with their HTTP status.
//   - RPCError: the `{code, text}` contract of the RPC endpoints, always
//     rendered with status 200 so the web client can inspect `code`.
package errs
