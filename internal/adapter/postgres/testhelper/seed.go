package testhelper

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

var seq atomic.Int64

// uniqueCode returns a code that does not collide with other seeded rows.
func uniqueCode(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, seq.Add(1))
}

// SeedCompany inserts an active company and returns its id.
func SeedCompany(t *testing.T, pool *pgxpool.Pool, name string, parentID *int64) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO companies (name, code, parent_id, created_by, last_modified_by)
		 VALUES ($1, $2, $3, 'seed', 'seed') RETURNING id`,
		name, uniqueCode("CO"), parentID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedCompany: %v", err)
	}
	return id
}

// SeedRole inserts an active role and returns its id.
func SeedRole(t *testing.T, pool *pgxpool.Pool, name string, parentID *int64) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO roles (name, code, parent_id, created_by, last_modified_by)
		 VALUES ($1, $2, $3, 'seed', 'seed') RETURNING id`,
		name, uniqueCode("ROLE"), parentID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedRole: %v", err)
	}
	return id
}
