package stores

import (
	"fmt"
	"os"
)

// NewStore creates a new medical store based on the configuration
func NewStore(config *StoreConfig) (MedicalStore, error) {
	switch config.Type {
	case "sqlite":
		return NewSQLiteStore(config)
	case "postgres":
		return NewPostgresStore(config)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// NewStoreFromEnv creates a store from DB_TYPE and DB_CONNECTION. Defaults to
// the SQLite store when DB_TYPE is unset.
func NewStoreFromEnv() (MedicalStore, error) {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		return NewSQLiteStoreDefault()
	}
	connection := os.Getenv("DB_CONNECTION")
	if connection == "" && dbType == "sqlite" {
		connection = "sorrel.sqlite"
	}
	return NewStore(NewStoreConfig(dbType, connection))
}

// NewSQLiteStoreDefault creates a SQLite store with default settings
func NewSQLiteStoreDefault() (MedicalStore, error) {
	return NewSQLiteStoreSimple("sorrel.sqlite")
}

// NewPostgresStoreDefault creates a PostgreSQL store from discrete connection
// parameters, typically read from the environment.
func NewPostgresStoreDefault(host, user, password, dbname string, port int) (MedicalStore, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)
	return NewPostgresStoreSimple(dsn)
}
