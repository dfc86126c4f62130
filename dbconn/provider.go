// Package dbconn opens the database a transfer runs against and hands out
// one connection per operation.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/darianmavgo/mktransfer/converters/common"

	"github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite    = "sqlite"
	DriverMySQL     = "mysql"
	DriverSQLServer = "sqlserver"
)

// SQLite accepts UNHEX('..') since 3.41, so it shares the MySQL literal form.
var dialects = map[string]common.Dialect{
	DriverSQLite:    common.DialectMySQL,
	DriverMySQL:     common.DialectMySQL,
	DriverSQLServer: common.DialectSQLServer,
}

// Drivers returns the supported driver names, sorted.
func Drivers() []string {
	list := make([]string, 0, len(dialects))
	for name := range dialects {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// DialectFor returns the binary literal dialect of a driver.
func DialectFor(driver string) (common.Dialect, error) {
	d, ok := dialects[strings.ToLower(driver)]
	if !ok {
		return 0, fmt.Errorf("unknown driver %q (want one of %s)", driver, strings.Join(Drivers(), ", "))
	}
	return d, nil
}

// Provider hands out a dedicated connection for the duration of one
// export or import.
type Provider interface {
	Conn(ctx context.Context) (*sql.Conn, error)
	Dialect() common.Dialect
}

// Pool is a Provider backed by a *sql.DB.
type Pool struct {
	db      *sql.DB
	dialect common.Dialect
}

// Ensure Pool implements Provider
var _ Provider = (*Pool)(nil)

// Open opens a pool for driver and dsn. No connection is made until the
// first call to Conn or Ping.
func Open(driver, dsn string) (*Pool, error) {
	driver = strings.ToLower(driver)
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if driver == DriverMySQL {
		cfg, err := MySQLConfig(dsn)
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, common.Connectivity(err, "failed to create mysql connector")
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(driver, dsn)
		if err != nil {
			return nil, common.Connectivity(err, "failed to open %s database", driver)
		}
	}

	if driver == DriverSQLite {
		// One writer at a time avoids SQLITE_BUSY between checked-out conns.
		db.SetMaxOpenConns(1)
	}
	return NewPool(db, dialect), nil
}

// NewPool wraps an already opened database. Closing the Pool closes db.
func NewPool(db *sql.DB, dialect common.Dialect) *Pool {
	return &Pool{db: db, dialect: dialect}
}

// MySQLConfig parses a go-sql-driver DSN and adds NO_BACKSLASH_ESCAPES to
// the session sql_mode, so that doubling single quotes is the only escaping
// text literals need.
func MySQLConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mysql dsn: %w", err)
	}
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	mode, ok := cfg.Params["sql_mode"]
	switch {
	case !ok || mode == "":
		cfg.Params["sql_mode"] = "CONCAT(@@sql_mode, ',NO_BACKSLASH_ESCAPES')"
	case !strings.Contains(strings.ToUpper(mode), "NO_BACKSLASH_ESCAPES"):
		cfg.Params["sql_mode"] = fmt.Sprintf("CONCAT(%s, ',NO_BACKSLASH_ESCAPES')", mode)
	}
	return cfg, nil
}

// Conn checks out one connection. The caller must close it.
func (p *Pool) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, common.Connectivity(err, "failed to get connection")
	}
	return conn, nil
}

// Dialect implements Provider.
func (p *Pool) Dialect() common.Dialect { return p.dialect }

// Ping verifies the database is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return common.Connectivity(err, "failed to ping database")
	}
	return nil
}

// DB exposes the underlying pool.
func (p *Pool) DB() *sql.DB { return p.db }

// Close closes the pool.
func (p *Pool) Close() error { return p.db.Close() }
