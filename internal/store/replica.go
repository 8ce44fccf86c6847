package store

import (
	"context"
	"fmt"
	"strings"
)

// Replica summarises one stored replica.
type Replica struct {
	ID    string `json:"id"`
	Facts int    `json:"facts"`
}

// CreateReplica registers an empty replica. An empty name is replaced by
// a generated ID. Returns the replica's ID.
func (s *Store) CreateReplica(ctx context.Context, name string) (string, error) {
	id := name
	if id == "" {
		id = s.ids.Generate()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO replicas (id) VALUES (?)`, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("create replica %q: %w", id, ErrReplicaExists)
		}
		return "", fmt.Errorf("create replica %q: %w", id, err)
	}

	s.logger.Debug("replica created", "replica", id)
	return id, nil
}

// ListReplicas returns all replicas in creation order.
func (s *Store) ListReplicas(ctx context.Context) ([]Replica, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, COUNT(f.fact_id)
		FROM replicas r
		LEFT JOIN facts f ON f.replica_id = r.id
		GROUP BY r.seq, r.id
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list replicas: %w", err)
	}
	defer rows.Close()

	replicas := []Replica{}
	for rows.Next() {
		var r Replica
		if err := rows.Scan(&r.ID, &r.Facts); err != nil {
			return nil, fmt.Errorf("list replicas: scan: %w", err)
		}
		replicas = append(replicas, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list replicas: %w", err)
	}
	return replicas, nil
}

// DeleteReplica removes a replica and its facts.
func (s *Store) DeleteReplica(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM replicas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete replica %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete replica %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete replica %q: %w", id, ErrReplicaNotFound)
	}
	s.logger.Debug("replica deleted", "replica", id)
	return nil
}

// requireReplica fails with ErrReplicaNotFound when id is unknown.
func requireReplica(ctx context.Context, q querier, id string) error {
	var exists int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM replicas WHERE id = ?`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("lookup replica %q: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("replica %q: %w", id, ErrReplicaNotFound)
	}
	return nil
}
