// Package dbadmin issues the administrative commands a test-run database
// needs: create the database, enable an extension, grant table privileges.
package dbadmin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrNotSupported is returned when an engine has no equivalent for an
// operation (extensions are a postgres concept).
var ErrNotSupported = errors.New("operation not supported by this engine")

// Engine issues administrative commands against a locally reachable
// database server.
type Engine interface {
	CreateDatabase(ctx context.Context, name string) error
	CreateExtension(ctx context.Context, name string) error
	GrantAll(ctx context.Context, table, user string) error
	Close() error
}

type mysqlEngine struct {
	db *sqlx.DB
}

// OpenMySQL connects to a MySQL server using an admin DSN in
// go-sql-driver format, e.g. "root@tcp(127.0.0.1:3306)/".
func OpenMySQL(dsn string) (Engine, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return &mysqlEngine{db: db}, nil
}

func (e *mysqlEngine) CreateDatabase(ctx context.Context, name string) error {
	if _, err := e.db.ExecContext(ctx, "CREATE DATABASE "+quoteMySQL(name)); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

func (e *mysqlEngine) CreateExtension(ctx context.Context, name string) error {
	return fmt.Errorf("create extension %s: %w", name, ErrNotSupported)
}

func (e *mysqlEngine) GrantAll(ctx context.Context, table, user string) error {
	stmt := fmt.Sprintf("GRANT ALL ON %s TO %s", quoteMySQL(table), quoteMySQL(user))
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("grant on %s to %s: %w", table, user, err)
	}
	return nil
}

func (e *mysqlEngine) Close() error {
	return e.db.Close()
}

// quoteMySQL backtick-quotes a MySQL identifier.
func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

type postgresEngine struct {
	db *sqlx.DB
}

// OpenPostgres connects to a PostgreSQL server using an admin DSN in
// lib/pq URL format, e.g.
// "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable".
func OpenPostgres(dsn string) (Engine, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &postgresEngine{db: db}, nil
}

func (e *postgresEngine) CreateDatabase(ctx context.Context, name string) error {
	if _, err := e.db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

func (e *postgresEngine) CreateExtension(ctx context.Context, name string) error {
	if _, err := e.db.ExecContext(ctx, "CREATE EXTENSION "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("create extension %s: %w", name, err)
	}
	return nil
}

func (e *postgresEngine) GrantAll(ctx context.Context, table, user string) error {
	stmt := fmt.Sprintf("GRANT ALL ON %s TO %s", pq.QuoteIdentifier(table), pq.QuoteIdentifier(user))
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("grant on %s to %s: %w", table, user, err)
	}
	return nil
}

func (e *postgresEngine) Close() error {
	return e.db.Close()
}

// PostgresDSNForDB rewrites a postgres URL DSN to target dbname. The admin
// DSN points at the maintenance database; extension creation and grants must
// run inside the database that was just created.
func PostgresDSNForDB(adminDSN, dbname string) (string, error) {
	u, err := url.Parse(adminDSN)
	if err != nil {
		return "", fmt.Errorf("parse postgres DSN: %w", err)
	}
	u.Path = "/" + dbname
	return u.String(), nil
}
