package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/auramodel/internal/ir"
	"github.com/roach88/auramodel/internal/journal"
)

// Append adds facts to the end of a replica. Facts whose ID the replica
// already holds are skipped, as are repeats within facts itself, so the
// stored replica stays reduced. Returns how many facts were added.
func (s *Store) Append(ctx context.Context, replica string, facts ...ir.Fact) (int, error) {
	added := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireReplica(ctx, tx, replica); err != nil {
			return err
		}
		n, err := appendFacts(ctx, tx, replica, facts)
		added = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("append: %w", err)
	}

	s.logger.Debug("facts appended",
		"replica", replica,
		"offered", len(facts),
		"added", added)
	return added, nil
}

// Load returns a replica's facts in position order.
func (s *Store) Load(ctx context.Context, replica string) (ir.Journal, error) {
	if err := requireReplica(ctx, s.db, replica); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	j, err := loadFacts(ctx, s.db, replica)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return j, nil
}

// MergeInto replaces dst with journal.Merge(dst, src) in one transaction
// and returns the merged journal. src is left untouched.
func (s *Store) MergeInto(ctx context.Context, dst, src string) (ir.Journal, error) {
	var merged ir.Journal
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireReplica(ctx, tx, dst); err != nil {
			return err
		}
		if err := requireReplica(ctx, tx, src); err != nil {
			return err
		}

		a, err := loadFacts(ctx, tx, dst)
		if err != nil {
			return err
		}
		b, err := loadFacts(ctx, tx, src)
		if err != nil {
			return err
		}

		merged = journal.Merge(a, b)

		if _, err := tx.ExecContext(ctx, `DELETE FROM facts WHERE replica_id = ?`, dst); err != nil {
			return fmt.Errorf("clear replica %q: %w", dst, err)
		}
		_, err = appendFacts(ctx, tx, dst, merged)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("merge %q into %q: %w", src, dst, err)
	}

	s.logger.Info("replicas merged",
		"dst", dst,
		"src", src,
		"facts", len(merged))
	return merged, nil
}

// Locate returns the IDs of replicas holding factID, in creation order.
func (s *Store) Locate(ctx context.Context, factID ir.FactID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id
		FROM facts f
		JOIN replicas r ON r.id = f.replica_id
		WHERE f.fact_id = ?
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, string(factID))
	if err != nil {
		return nil, fmt.Errorf("locate %q: %w", factID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("locate %q: scan: %w", factID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("locate %q: %w", factID, err)
	}
	return ids, nil
}

// appendFacts inserts facts after the replica's last position.
// ON CONFLICT DO NOTHING on (replica_id, fact_id) keeps the first occurrence.
func appendFacts(ctx context.Context, q querier, replica string, facts []ir.Fact) (int, error) {
	var next int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM facts WHERE replica_id = ?`, replica,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}

	added := 0
	for _, f := range facts {
		payload, err := marshalPayload(f.Payload)
		if err != nil {
			return added, fmt.Errorf("fact %q: %w", f.ID, err)
		}

		res, err := q.ExecContext(ctx, `
			INSERT INTO facts (replica_id, position, fact_id, payload)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(replica_id, fact_id) DO NOTHING
		`, replica, next, string(f.ID), payload)
		if err != nil {
			return added, fmt.Errorf("insert fact %q: %w", f.ID, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return added, fmt.Errorf("insert fact %q: %w", f.ID, err)
		}
		if n == 1 {
			next++
			added++
		}
	}
	return added, nil
}

// loadFacts reads a replica ORDER BY position ASC.
func loadFacts(ctx context.Context, q querier, replica string) (ir.Journal, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT fact_id, payload
		FROM facts
		WHERE replica_id = ?
		ORDER BY position ASC
	`, replica)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	j := ir.Journal{}
	for rows.Next() {
		var id, payloadJSON string
		if err := rows.Scan(&id, &payloadJSON); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		payload, err := unmarshalPayload(payloadJSON)
		if err != nil {
			return nil, fmt.Errorf("fact %q: %w", id, err)
		}
		j = append(j, ir.Fact{ID: ir.FactID(id), Payload: payload})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facts: %w", err)
	}
	return j, nil
}
