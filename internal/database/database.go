package database

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS companies (
// 	handle VARCHAR(25) PRIMARY KEY CHECK (handle = lower(handle)),
// 	name TEXT UNIQUE NOT NULL,
// 	num_employees INTEGER CHECK (num_employees >= 0),
// 	description TEXT NOT NULL,
// 	logo_url TEXT
// );
//
// CREATE TABLE IF NOT EXISTS jobs (
// 	id SERIAL PRIMARY KEY,
// 	title TEXT NOT NULL,
// 	salary INTEGER CHECK (salary >= 0),
// 	equity NUMERIC CHECK (equity <= 1.0),
// 	company_handle VARCHAR(25) NOT NULL REFERENCES companies ON DELETE CASCADE
// );

// GetDbConn tries to establish a connection to postgres and return the connection handler
func GetDbConn(databaseURL string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open postgres connection")
	}
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "unable to ping postgres")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}
