package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerCredits        prometheus.Counter
	LedgerDebits         prometheus.Counter
	SettlementsProcessed *prometheus.CounterVec
	DriftDetected        prometheus.Counter

	// Inventory metrics
	SharesReserved prometheus.Counter
	SharesReleased prometheus.Counter

	// Investment metrics
	InvestmentsCreated *prometheus.CounterVec
	InvestmentsSettled *prometheus.CounterVec
	InvestmentsExpired prometheus.Counter

	// Intake metrics
	DepositsRequested    prometheus.Counter
	WithdrawalsRequested prometheus.Counter

	// Distribution metrics
	DistributionsRun      prometheus.Counter
	DistributionCredits   prometheus.Counter
	DistributionRemainder prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		LedgerCredits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_ledger_credits_total",
			Help: "Total number of completed wallet credits",
		}),
		LedgerDebits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_ledger_debits_total",
			Help: "Total number of completed wallet debits",
		}),
		SettlementsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sahmly_settlements_total",
				Help: "Total number of pending transactions settled, by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		DriftDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_ledger_drift_detected_total",
			Help: "Total number of accounts frozen after a balance replay mismatch",
		}),

		SharesReserved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_shares_reserved_total",
			Help: "Total number of property shares reserved",
		}),
		SharesReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_shares_released_total",
			Help: "Total number of property shares released back to supply",
		}),

		InvestmentsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sahmly_investments_created_total",
				Help: "Total number of investments created, by funding source",
			},
			[]string{"funding_source"},
		),
		InvestmentsSettled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sahmly_investments_settled_total",
				Help: "Total number of pending investments settled, by outcome",
			},
			[]string{"outcome"},
		),
		InvestmentsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_investments_expired_total",
			Help: "Total number of pending investments cancelled by the expiry sweep",
		}),

		DepositsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_deposits_requested_total",
			Help: "Total number of pending deposits opened",
		}),
		WithdrawalsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_withdrawals_requested_total",
			Help: "Total number of pending withdrawals opened",
		}),

		DistributionsRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_distributions_run_total",
			Help: "Total number of distribution runs completed",
		}),
		DistributionCredits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_distribution_credits_total",
			Help: "Total number of distribution credits applied",
		}),
		DistributionRemainder: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sahmly_distribution_remainder_cents_total",
			Help: "Accumulated rounding remainder retained across distribution runs, in cents",
		}),
	}
}
