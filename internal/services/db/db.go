package db

import (
	"fmt"
	"sync"

	"database/sql"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/starpaykids/allowance/internal/storage"
)

const (
	dbBaseFolder   = "data"
	dbConfigString = "cache=private&_journal=WAL&mode=rwc&_txlock=immediate&_busy_timeout=10000"
)

// DB owns the contract-state store that backs the allowance ledger.
type DB struct {
	contractID string
	mu         sync.Mutex
	db         *sql.DB

	AllowanceDB *AllowanceDB
}

// NewDB instantiates a sqlite backed DB under basePath.
func NewDB(basePath, contractID string) (*DB, error) {
	folderPath := fmt.Sprintf("%s/%s", basePath, dbBaseFolder)
	path := fmt.Sprintf("%s/allowance.db", folderPath)

	// check if directory exists
	if !storage.Exists(folderPath) {
		err := storage.CreateDir(folderPath)
		if err != nil {
			return nil, err
		}
	}

	sqldb, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", path, dbConfigString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = sqldb.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqldb.SetMaxOpenConns(1)

	return newDB(sqldb, contractID)
}

// NewPostgresDB instantiates a postgres backed DB.
func NewPostgresDB(username, password, name, host, contractID string) (*DB, error) {
	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=5432 sslmode=disable", username, password, name, host)
	sqldb, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = sqldb.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newDB(sqldb, contractID)
}

func newDB(sqldb *sql.DB, contractID string) (*DB, error) {
	adb, err := NewAllowanceDB(sqldb, contractID)
	if err != nil {
		return nil, err
	}

	d := &DB{
		contractID:  contractID,
		db:          sqldb,
		AllowanceDB: adb,
	}

	// create table
	err = adb.CreateAllowanceTable()
	if err != nil {
		return nil, err
	}

	// create indexes
	err = adb.CreateAllowanceTableIndexes()
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Close closes the db
func (d *DB) Close() error {
	return d.db.Close()
}
