package dbadmin

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

// newMockMySQL returns a mysqlEngine backed by sqlmock.
func newMockMySQL(t *testing.T) (*mysqlEngine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	eng := &mysqlEngine{db: sqlx.NewDb(db, "sqlmock")}
	t.Cleanup(func() { _ = eng.Close() })
	return eng, mock
}

func newMockPostgres(t *testing.T) (*postgresEngine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	eng := &postgresEngine{db: sqlx.NewDb(db, "sqlmock")}
	t.Cleanup(func() { _ = eng.Close() })
	return eng, mock
}

func expectExec(mock sqlmock.Sqlmock, stmt string) {
	mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestMySQLCreateDatabase(t *testing.T) {
	eng, mock := newMockMySQL(t)
	expectExec(mock, "CREATE DATABASE `sahana`")

	if err := eng.CreateDatabase(context.Background(), "sahana"); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMySQLCreateExtensionNotSupported(t *testing.T) {
	eng, _ := newMockMySQL(t)

	err := eng.CreateExtension(context.Background(), "postgis")
	if !errors.Is(err, ErrNotSupported) {
		t.Errorf("CreateExtension = %v, want ErrNotSupported", err)
	}
}

func TestMySQLIdentifierQuoting(t *testing.T) {
	eng, mock := newMockMySQL(t)
	expectExec(mock, "CREATE DATABASE `odd``name`")

	if err := eng.CreateDatabase(context.Background(), "odd`name"); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresCreateDatabase(t *testing.T) {
	eng, mock := newMockPostgres(t)
	expectExec(mock, `CREATE DATABASE "sahana"`)

	if err := eng.CreateDatabase(context.Background(), "sahana"); err != nil {
		t.Fatalf("CreateDatabase: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresCreateExtension(t *testing.T) {
	eng, mock := newMockPostgres(t)
	expectExec(mock, `CREATE EXTENSION "postgis"`)

	if err := eng.CreateExtension(context.Background(), "postgis"); err != nil {
		t.Fatalf("CreateExtension: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresGrantAll(t *testing.T) {
	eng, mock := newMockPostgres(t)
	expectExec(mock, `GRANT ALL ON "geometry_columns" TO "travis"`)
	expectExec(mock, `GRANT ALL ON "spatial_ref_sys" TO "travis"`)

	ctx := context.Background()
	for _, table := range []string{"geometry_columns", "spatial_ref_sys"} {
		if err := eng.GrantAll(ctx, table, "travis"); err != nil {
			t.Fatalf("GrantAll(%s): %v", table, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresCreateDatabaseError(t *testing.T) {
	eng, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE DATABASE "sahana"`)).
		WillReturnError(errors.New("database \"sahana\" already exists"))

	if err := eng.CreateDatabase(context.Background(), "sahana"); err == nil {
		t.Error("expected error from server to propagate")
	}
}

func TestPostgresDSNForDB(t *testing.T) {
	tests := []struct {
		name   string
		dsn    string
		dbname string
		want   string
	}{
		{
			name:   "maintenance db replaced",
			dsn:    "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable",
			dbname: "sahana",
			want:   "postgres://postgres@127.0.0.1:5432/sahana?sslmode=disable",
		},
		{
			name:   "no database in DSN",
			dsn:    "postgres://postgres@127.0.0.1:5432",
			dbname: "sahana",
			want:   "postgres://postgres@127.0.0.1:5432/sahana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PostgresDSNForDB(tt.dsn, tt.dbname)
			if err != nil {
				t.Fatalf("PostgresDSNForDB: %v", err)
			}
			if got != tt.want {
				t.Errorf("PostgresDSNForDB(%q, %q) = %q, want %q", tt.dsn, tt.dbname, got, tt.want)
			}
		})
	}
}
