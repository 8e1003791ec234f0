package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"opensms/internal/store"
)

func (s *Store) ACLExists(ctx context.Context, aclUUID string) (bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT count(access_control_uuid) FROM v_access_controls WHERE access_control_uuid=$1
	`, aclUUID)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ACLExistsByName(ctx context.Context, name string) (bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT count(access_control_uuid) FROM v_access_controls WHERE access_control_name=$1
	`, name)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateACL inserts an access control set with the default policy "deny".
// The insert is keyed on the caller-supplied uuid, so concurrent
// first-run bootstraps converge instead of erroring.
func (s *Store) CreateACL(ctx context.Context, aclUUID, name, description string) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO v_access_controls (access_control_uuid, access_control_name, access_control_default, access_control_description)
		VALUES ($1,$2,'deny',$3)
		ON CONFLICT (access_control_uuid) DO NOTHING
	`, aclUUID, name, nullIfEmpty(description))
	return err
}

func (s *Store) ListACLBlocks(ctx context.Context, aclUUID string) ([]store.ACLBlock, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT access_control_node_uuid, node_cidr
		FROM v_access_control_nodes
		WHERE access_control_uuid=$1 AND node_type='allow'
		ORDER BY access_control_node_uuid
	`, aclUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []store.ACLBlock
	for rows.Next() {
		var b store.ACLBlock
		if err := rows.Scan(&b.NodeUUID, &b.CIDR); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// AddACLBlocks bulk-inserts allow nodes, one fresh uuid per cidr.
func (s *Store) AddACLBlocks(ctx context.Context, aclUUID string, cidrs []string, description string) error {
	if len(cidrs) == 0 {
		return nil
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, cidr := range cidrs {
		_, err := tx.Exec(ctx, `
			INSERT INTO v_access_control_nodes (access_control_node_uuid, access_control_uuid, node_type, node_cidr, node_description)
			VALUES ($1,$2,'allow',$3,$4)
		`, uuid.NewString(), aclUUID, cidr, nullIfEmpty(description))
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// noRows reports a pgx empty-result scan, which callers treat as a
// non-result rather than an error.
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
