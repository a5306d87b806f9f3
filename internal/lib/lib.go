// Package lib groups the domain libraries the services are built on:
// circuit reading, Brayns JSON-RPC, connectome edge lists and the Asynq
// background jobs.
package lib
