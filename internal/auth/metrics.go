package auth

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts authentication outcomes.
type Metrics struct {
	signIns       *prometheus.CounterVec
	lockouts      prometheus.Counter
	resetRequests *prometheus.CounterVec
}

// NewMetrics registers the auth counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amakart_auth_sign_ins_total",
			Help: "Sign-in attempts by result",
		}, []string{"result"}),
		lockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "amakart_auth_lockouts_total",
			Help: "Accounts locked after repeated sign-in failures",
		}),
		resetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amakart_auth_password_reset_requests_total",
			Help: "Password reset requests by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.signIns, m.lockouts, m.resetRequests)
	return m
}

func (m *Metrics) signIn(result string) {
	if m != nil {
		m.signIns.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) locked() {
	if m != nil {
		m.lockouts.Inc()
	}
}

func (m *Metrics) resetRequest(result string) {
	if m != nil {
		m.resetRequests.WithLabelValues(result).Inc()
	}
}
