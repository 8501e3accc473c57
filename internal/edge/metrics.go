package edge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storefront/internal/locale"
)

// Metrics counts dispatcher outcomes.
type Metrics struct {
	Requests        *prometheus.CounterVec
	LocaleRedirects *prometheus.CounterVec
	LimiterErrors   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_dispatch_requests_total",
			Help: "Requests by dispatcher branch",
		}, []string{"branch"}),
		LocaleRedirects: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_locale_redirects_total",
			Help: "Locale redirects by resolved locale and the signal that decided it",
		}, []string{"locale", "source"}),
		LimiterErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_edge_limiter_errors_total",
			Help: "Admission checks that failed open",
		}, []string{"class"}),
	}
}

func (m *Metrics) observeBranch(b Branch) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(string(b)).Inc()
}

func (m *Metrics) observeRedirect(l locale.Locale, source locale.Source) {
	if m == nil {
		return
	}
	m.LocaleRedirects.WithLabelValues(l.String(), string(source)).Inc()
}

func (m *Metrics) observeLimiterError(class string) {
	if m == nil {
		return
	}
	m.LimiterErrors.WithLabelValues(class).Inc()
}
