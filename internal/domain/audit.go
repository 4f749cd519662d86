package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an audit trail entry for compliance review. Every
// settlement, allocation and distribution writes one.
type AuditLog struct {
	ID           string
	ActorID      string // who performed the action; "system" for workers
	Action       string
	ResourceType string
	ResourceID   string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionInvestmentCreate AuditAction = "investment.create"
	AuditActionInvestmentSettle AuditAction = "investment.settle"
	AuditActionInvestmentExpire AuditAction = "investment.expire"

	AuditActionDepositRequest    AuditAction = "deposit.request"
	AuditActionWithdrawalRequest AuditAction = "withdrawal.request"
	AuditActionTransactionSettle AuditAction = "transaction.settle"

	AuditActionDistributionRun AuditAction = "distribution.run"
	AuditActionAccountFreeze   AuditAction = "account.freeze"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
