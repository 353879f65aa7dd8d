package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AmbassadorMetrics holds the Prometheus counters for the ambassador program
type AmbassadorMetrics struct {
	SignupsTotal             prometheus.Counter
	ReferralBonusesTotal     prometheus.Counter
	ReferralBonusAmountTotal prometheus.Counter
	CommissionsTotal         prometheus.Counter
	WithdrawalsDecidedTotal  *prometheus.CounterVec
	PaymentsCapturedTotal    prometheus.Counter
}

// NewAmbassadorMetrics registers and returns the metric set
func NewAmbassadorMetrics() *AmbassadorMetrics {
	return &AmbassadorMetrics{
		SignupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ambassador_signups_total",
			Help: "Total number of ambassador registrations",
		}),
		ReferralBonusesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "referral_bonuses_credited_total",
			Help: "Total number of referral bonuses credited",
		}),
		ReferralBonusAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "referral_bonus_amount_total",
			Help: "Total referral bonus amount credited, in paise",
		}),
		CommissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "order_commissions_attributed_total",
			Help: "Total number of per-order commissions attributed",
		}),
		WithdrawalsDecidedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "withdrawals_decided_total",
			Help: "Total number of withdrawal requests decided, by outcome",
		}, []string{"decision"}),
		PaymentsCapturedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plan_payments_captured_total",
			Help: "Total number of plan payments captured",
		}),
	}
}

// RecordWithdrawalDecision counts one decided withdrawal
func (m *AmbassadorMetrics) RecordWithdrawalDecision(decision string) {
	m.WithdrawalsDecidedTotal.WithLabelValues(decision).Inc()
}

// RecordReferralBonus counts one credited referral bonus
func (m *AmbassadorMetrics) RecordReferralBonus(amount int64) {
	m.ReferralBonusesTotal.Inc()
	m.ReferralBonusAmountTotal.Add(float64(amount))
}
