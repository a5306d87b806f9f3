// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch or persist data,
// abstracting SQL logic away from the service layer.
package repository

import (
	"github.com/deppfellow/webbrayns-backend/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Connectome *ConnectomeRepository
}

// NewRepositories builds every repository on top of the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Connectome: NewConnectomeRepository(s.DB.Pool),
	}
}
