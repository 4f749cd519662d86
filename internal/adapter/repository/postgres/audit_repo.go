package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditInsert = `
	INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, before_state, after_state, status, error_message, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// Create inserts an audit log entry outside any transaction.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	before, after, err := marshalStates(log)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, auditInsert,
		log.ID, log.ActorID, log.Action, log.ResourceType, log.ResourceID,
		before, after, log.Status, log.ErrorMessage, log.CreatedAt,
	)

	return err
}

// CreateTx inserts an audit log entry within a transaction, so the
// trail commits or rolls back with the action it records.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	pgxTx := tx.(*Tx).PgxTx()

	before, after, err := marshalStates(log)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, auditInsert,
		log.ID, log.ActorID, log.Action, log.ResourceType, log.ResourceID,
		before, after, log.Status, log.ErrorMessage, log.CreatedAt,
	)

	return err
}

// List retrieves audit logs matching the filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, resource_type, resource_id, before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1
	`
	var args []any

	addFilter := func(clause, value string) {
		if value != "" {
			args = append(args, value)
			query += fmt.Sprintf(" AND %s = $%d", clause, len(args))
		}
	}
	addFilter("actor_id", filter.ActorID)
	addFilter("action", filter.Action)
	addFilter("resource_type", filter.ResourceType)
	addFilter("resource_id", filter.ResourceID)

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var before, after []byte

		err := rows.Scan(
			&log.ID, &log.ActorID, &log.Action, &log.ResourceType, &log.ResourceID,
			&before, &after, &log.Status, &log.ErrorMessage, &log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if before != nil {
			_ = json.Unmarshal(before, &log.BeforeState)
		}
		if after != nil {
			_ = json.Unmarshal(after, &log.AfterState)
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

func marshalStates(log *domain.AuditLog) ([]byte, []byte, error) {
	var before, after []byte
	var err error

	if log.BeforeState != nil {
		before, err = json.Marshal(log.BeforeState)
		if err != nil {
			return nil, nil, err
		}
	}
	if log.AfterState != nil {
		after, err = json.Marshal(log.AfterState)
		if err != nil {
			return nil, nil, err
		}
	}

	return before, after, nil
}
