package store

import (
	"context"
	"database/sql"
	"fmt"

	"intake/internal/checklist/models"
	id "intake/pkg/domain"
)

// PostgresRuleStore persists the rule catalog in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE checklist_rules (
//	    id          BIGSERIAL PRIMARY KEY,
//	    programme   TEXT NOT NULL,
//	    intake_term TEXT NOT NULL,
//	    campus      TEXT NOT NULL,
//	    dept        TEXT NOT NULL,
//	    doc_type    TEXT NOT NULL,
//	    required    BOOLEAN NOT NULL DEFAULT FALSE,
//	    active      BOOLEAN NOT NULL DEFAULT TRUE
//	);
//	CREATE INDEX checklist_rules_lookup_idx
//	    ON checklist_rules (programme, intake_term, campus, dept) WHERE active;
type PostgresRuleStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRuleStore {
	return &PostgresRuleStore{db: db}
}

func (s *PostgresRuleStore) ListActive(ctx context.Context, programme, intakeTerm, campus string, dept id.Dept) ([]models.ChecklistRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, programme, intake_term, campus, dept, doc_type, required, active
		FROM checklist_rules
		WHERE active
		  AND programme = $1 AND intake_term = $2 AND campus = $3 AND dept = $4`,
		programme, intakeTerm, campus, string(dept))
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	defer rows.Close()

	var out []models.ChecklistRule
	for rows.Next() {
		var r models.ChecklistRule
		var dept string
		if err := rows.Scan(&r.ID, &r.Programme, &r.IntakeTerm, &r.Campus, &dept, &r.DocType, &r.Required, &r.Active); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.Dept = id.Dept(dept)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Activate deactivates every rule in the group and inserts the new active row
// in a single transaction, so the "one active rule per group" marker cannot be
// observed half-applied.
func (s *PostgresRuleStore) Activate(ctx context.Context, rule models.ChecklistRule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		UPDATE checklist_rules SET active = FALSE
		WHERE programme = $1 AND intake_term = $2 AND campus = $3 AND dept = $4 AND doc_type = $5`,
		rule.Programme, rule.IntakeTerm, rule.Campus, string(rule.Dept), rule.DocType)
	if err != nil {
		return fmt.Errorf("deactivate rule group: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checklist_rules (programme, intake_term, campus, dept, doc_type, required, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)`,
		rule.Programme, rule.IntakeTerm, rule.Campus, string(rule.Dept), rule.DocType, rule.Required)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activate tx: %w", err)
	}
	return nil
}
