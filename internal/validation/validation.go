// Package validation reads and validates the RPC request envelope.
//
// Every RPC endpoint takes its input as a JSON document in the "i" parameter
// (query string or form body). Circuit endpoints also take the Brayns
// hostname in "h". Validation rules live in struct tags checked with
// go-playground/validator; failures become code 1 RPC errors.
package validation
