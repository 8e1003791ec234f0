// Package pg implements the persistence boundary on PostgreSQL via pgx.
// Table names follow the hosting PBX schema (v_ prefixed views).
package pg

import "github.com/jackc/pgx/v5/pgxpool"

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
