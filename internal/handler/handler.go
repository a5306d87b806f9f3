// Package handler is the HTTP entry point of every RPC operation.
//
// Each handler decodes the request envelope through the validation
// package, calls the matching service and writes the JSON result.
// Failures travel back as *errs.RPCError values.
package handler
