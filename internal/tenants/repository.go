package tenants

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/docketworks/docket/pkg/query"
	"github.com/docketworks/docket/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "organizations", "o").
	Project("id", "ID").
	Project("name", "Name").
	Project("domain", "Domain").
	Project("created_at", "CreatedAt")

// System resolves caller organizations.
type System interface {
	// Resolve returns the organization registered for the given mail
	// domain. Unknown domains, empty domains, and lookup failures all
	// resolve to the default organization; Resolve never fails.
	Resolve(ctx context.Context, domain string) Organization
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an organization resolver backed by the organizations table.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "tenants"),
	}
}

func (r *repo) Resolve(ctx context.Context, domain string) Organization {
	domain = strings.ToLower(strings.TrimSpace(domain))

	if domain != "" {
		if org, err := r.find(ctx, "Domain", domain); err == nil {
			return org
		} else if !errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("organization lookup failed", "domain", domain, "error", err)
		}
	}

	if org, err := r.find(ctx, "Name", DefaultName); err == nil {
		return org
	} else if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("default organization lookup failed", "error", err)
	}

	// No organizations registered at all. The zero id still yields
	// consistent policy inputs.
	return Organization{Name: DefaultName}
}

func (r *repo) find(ctx context.Context, field, value string) (Organization, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals(field, &value).
		BuildSingleOrNull()

	return repository.QueryOne(ctx, r.db, q, args, scanOrganization)
}

func scanOrganization(s repository.Scanner) (Organization, error) {
	var o Organization
	err := s.Scan(&o.ID, &o.Name, &o.Domain, &o.CreatedAt)
	return o, err
}
