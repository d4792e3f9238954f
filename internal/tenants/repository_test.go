package tenants_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/tenants"
)

// rowDriver is a database/sql driver stub. Each query returns the
// configured rows, or the configured error when set.
type rowDriver struct {
	rows [][]driver.Value
	err  error
}

func (d *rowDriver) Open(string) (driver.Conn, error) {
	return &rowConn{driver: d}, nil
}

type rowConn struct{ driver *rowDriver }

func (c *rowConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *rowConn) Close() error              { return nil }
func (c *rowConn) Begin() (driver.Tx, error) { return nil, errors.New("tx not supported") }

func (c *rowConn) QueryContext(
	_ context.Context,
	_ string,
	_ []driver.NamedValue,
) (driver.Rows, error) {
	if c.driver.err != nil {
		return nil, c.driver.err
	}
	return &rowSet{rows: c.driver.rows}, nil
}

type rowSet struct {
	rows [][]driver.Value
	next int
}

func (r *rowSet) Columns() []string {
	return []string{"id", "name", "domain", "created_at"}
}
func (r *rowSet) Close() error { return nil }

func (r *rowSet) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.next])
	r.next++
	return nil
}

var driverSeq int

func openDB(t *testing.T, d driver.Driver) *sql.DB {
	t.Helper()

	driverSeq++
	name := fmt.Sprintf("tenants-test-%d", driverSeq)
	sql.Register(name, d)

	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func resolver(t *testing.T, d driver.Driver) tenants.System {
	t.Helper()
	return tenants.New(openDB(t, d), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolveMatchesDomain(t *testing.T) {
	id := uuid.New()
	sys := resolver(t, &rowDriver{
		rows: [][]driver.Value{
			{id.String(), "acme", "acme.example.com", time.Now()},
		},
	})

	org := sys.Resolve(context.Background(), "ACME.example.com ")

	if org.ID != id {
		t.Errorf("org id = %s, want %s", org.ID, id)
	}
	if org.Name != "acme" {
		t.Errorf("org name = %q, want %q", org.Name, "acme")
	}
}

func TestResolveUnknownDomainFallsBack(t *testing.T) {
	// No rows at all: both the domain lookup and the default lookup come
	// back empty, and Resolve still yields the catch-all organization.
	sys := resolver(t, &rowDriver{})

	org := sys.Resolve(context.Background(), "nobody.example.com")

	if org.Name != tenants.DefaultName {
		t.Errorf("org name = %q, want %q", org.Name, tenants.DefaultName)
	}
	if org.ID != uuid.Nil {
		t.Errorf("org id = %s, want zero", org.ID)
	}
}

func TestResolveEmptyDomain(t *testing.T) {
	sys := resolver(t, &rowDriver{})

	org := sys.Resolve(context.Background(), "   ")

	if org.Name != tenants.DefaultName {
		t.Errorf("org name = %q, want %q", org.Name, tenants.DefaultName)
	}
}

func TestResolveLookupFailureNeverFails(t *testing.T) {
	// Wrapped and unwrapped errors alike resolve to the default
	// organization; Resolve never surfaces a lookup failure.
	for name, err := range map[string]error{
		"plain":   errors.New("connection refused"),
		"wrapped": fmt.Errorf("lookup: %w", fs.ErrClosed),
	} {
		t.Run(name, func(t *testing.T) {
			sys := resolver(t, &rowDriver{err: err})

			org := sys.Resolve(context.Background(), "acme.example.com")

			if org.Name != tenants.DefaultName {
				t.Errorf("org name = %q, want %q", org.Name, tenants.DefaultName)
			}
		})
	}
}
