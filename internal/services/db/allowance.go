package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/starpaykids/allowance/internal/common"
)

// AllowanceDB persists the contract state: every sent allowance, from which
// the running total and the last recipient are derived.
type AllowanceDB struct {
	suffix string
	db     *sql.DB
}

// NewAllowanceDB creates a new DB scoped to one contract
func NewAllowanceDB(db *sql.DB, contractID string) (*AllowanceDB, error) {
	adb := &AllowanceDB{
		suffix: strings.ToLower(contractID),
		db:     db,
	}

	return adb, nil
}

// Close closes the db
func (db *AllowanceDB) Close() error {
	return db.db.Close()
}

// CreateAllowanceTable creates a table to store sent allowances in the given db
func (db *AllowanceDB) CreateAllowanceTable() error {
	_, err := db.db.Exec(fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS t_allowances_%s(
		tx_hash text NOT NULL PRIMARY KEY,
		created_at timestamp NOT NULL,
		from_addr text NOT NULL,
		to_addr text NOT NULL,
		value double precision NOT NULL
	);
	`, db.suffix))

	return err
}

// CreateAllowanceTableIndexes creates the indexes for allowances in the given db
func (db *AllowanceDB) CreateAllowanceTableIndexes() error {
	suffix := common.ShortenAddress(db.suffix, 6)
	suffix = strings.ReplaceAll(suffix, "...", "_")

	_, err := db.db.Exec(fmt.Sprintf(`
	CREATE INDEX IF NOT EXISTS idx_allowances_%s_created_at ON t_allowances_%s (created_at);
	`, suffix, db.suffix))
	if err != nil {
		return err
	}

	// filtering by recipient
	_, err = db.db.Exec(fmt.Sprintf(`
	CREATE INDEX IF NOT EXISTS idx_allowances_%s_to_addr ON t_allowances_%s (to_addr);
	`, suffix, db.suffix))

	return err
}

// AddAllowance records a sent allowance
func (db *AllowanceDB) AddAllowance(txHash, from, to string, amount float64, createdAt time.Time) error {
	_, err := db.db.Exec(fmt.Sprintf(`
	INSERT INTO t_allowances_%s (tx_hash, created_at, from_addr, to_addr, value)
	VALUES ($1, $2, $3, $4, $5)
	`, db.suffix), txHash, createdAt.UTC(), from, to, amount)

	return err
}

// TotalSent returns the sum of all sent allowances, 0 when none were sent
func (db *AllowanceDB) TotalSent() (float64, error) {
	var total float64

	err := db.db.QueryRow(fmt.Sprintf(`
	SELECT COALESCE(SUM(value), 0) FROM t_allowances_%s
	`, db.suffix)).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// LastRecipient returns the recipient of the most recent allowance, empty
// when no allowance has been sent yet
func (db *AllowanceDB) LastRecipient() (string, error) {
	var to string

	err := db.db.QueryRow(fmt.Sprintf(`
	SELECT to_addr FROM t_allowances_%s ORDER BY created_at DESC LIMIT 1
	`, db.suffix)).Scan(&to)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}

	return to, nil
}
