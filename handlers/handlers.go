package handlers

import (
	"github.com/anggr/haev-revalidate/database"
)

// DB is the shared database handle used by all handlers.
var DB *database.DB

// InitializeHandlers wires the database connection into the handler package.
func InitializeHandlers(db *database.DB) {
	DB = db
}
