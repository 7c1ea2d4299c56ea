package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

// timeLayout keeps a fixed fractional width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run operations

// SaveRun persists a run with its itemsets and rules in one transaction.
// An empty Run.ID is replaced by a new UUID and a zero CreatedAt by the
// current time. It returns the run ID.
func (s *Store) SaveRun(res *RunResult) (string, error) {
	run := res.Run
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.ItemsetCount = len(res.Itemsets)
	run.RuleCount = len(res.Rules)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO mining_runs
		(id, created_at, source, support_threshold, confidence_threshold, relative_support, row_count, itemset_count, rule_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.Source,
		run.SupportThreshold,
		run.ConfidenceThreshold,
		run.RelativeSupport,
		run.RowCount,
		run.ItemsetCount,
		run.RuleCount,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run %s: %w", run.ID, wrapMissingSchema(err))
	}

	for i, is := range res.Itemsets {
		itemsJSON, err := json.Marshal(is.Items)
		if err != nil {
			return "", fmt.Errorf("failed to marshal itemset: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO run_itemsets (run_id, position, items, size, support) VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, string(itemsJSON), len(is.Items), is.Support)
		if err != nil {
			return "", fmt.Errorf("failed to insert itemset %s: %w", is.Items, err)
		}
	}

	for i, r := range res.Rules {
		lhsJSON, err := json.Marshal(r.LHS)
		if err != nil {
			return "", fmt.Errorf("failed to marshal rule lhs: %w", err)
		}
		rhsJSON, err := json.Marshal(r.RHS)
		if err != nil {
			return "", fmt.Errorf("failed to marshal rule rhs: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO run_rules (run_id, position, lhs, rhs, support, confidence) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, string(lhsJSON), string(rhsJSON), r.Support, r.Confidence)
		if err != nil {
			return "", fmt.Errorf("failed to insert rule %s: %w", r, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}

	res.Run = run
	return run.ID, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, source, support_threshold, confidence_threshold, relative_support, row_count, itemset_count, rule_count
		FROM mining_runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, wrapMissingSchema(err))
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A limit of 0 or
// less returns every run.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, created_at, source, support_threshold, confidence_threshold, relative_support, row_count, itemset_count, rule_count
		FROM mining_runs
		ORDER BY created_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", wrapMissingSchema(err))
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetRunItemsets returns a run's frontier in saved order.
func (s *Store) GetRunItemsets(id string) ([]miner.ScoredItemset, error) {
	rows, err := s.db.Query(`SELECT items, support FROM run_itemsets WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get itemsets for run %s: %w", id, wrapMissingSchema(err))
	}
	defer rows.Close()

	var out []miner.ScoredItemset
	for rows.Next() {
		var itemsJSON string
		var is miner.ScoredItemset
		if err := rows.Scan(&itemsJSON, &is.Support); err != nil {
			return nil, fmt.Errorf("failed to scan itemset: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &is.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal itemset: %w", err)
		}
		out = append(out, is)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itemsets: %w", err)
	}
	return out, nil
}

// GetRunRules returns a run's rules in saved order.
func (s *Store) GetRunRules(id string) ([]miner.Rule, error) {
	rows, err := s.db.Query(`SELECT lhs, rhs, support, confidence FROM run_rules WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get rules for run %s: %w", id, wrapMissingSchema(err))
	}
	defer rows.Close()

	var out []miner.Rule
	for rows.Next() {
		var lhsJSON, rhsJSON string
		var r miner.Rule
		if err := rows.Scan(&lhsJSON, &rhsJSON, &r.Support, &r.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(lhsJSON), &r.LHS); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rule lhs: %w", err)
		}
		if err := json.Unmarshal([]byte(rhsJSON), &r.RHS); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rule rhs: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return out, nil
}

// DeleteRun removes a run and, through the foreign keys, its itemsets and rules.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec("DELETE FROM mining_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, wrapMissingSchema(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	err := row.Scan(
		&run.ID,
		&createdAt,
		&run.Source,
		&run.SupportThreshold,
		&run.ConfidenceThreshold,
		&run.RelativeSupport,
		&run.RowCount,
		&run.ItemsetCount,
		&run.RuleCount,
	)
	if err != nil {
		return nil, err
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for run %s: %w", run.ID, err)
	}
	return &run, nil
}
