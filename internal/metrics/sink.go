// Package metrics holds the balance gauges the poller publishes and the
// HTTP handler that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Standard labels of every Wealthsimple balance gauge.
var accountLabels = []string{"account_id", "account_type", "account_name"}

// Sink holds the four balance gauge families the poller writes into, all
// keyed by (account_id, account_type, account_name). Each Sink owns its own
// registry; nothing is registered globally.
//
// Known limitation: accounts that disappear from the API response leave
// their last-set series behind indefinitely; there is no expiry.
type Sink struct {
	registry *prometheus.Registry

	Deposited      *prometheus.GaugeVec
	Withdrawn      *prometheus.GaugeVec
	NetLiquidation *prometheus.GaugeVec
	GrossPosition  *prometheus.GaugeVec
}

// NewSink creates the registry and registers the four gauge families.
func NewSink() *Sink {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Sink{
		registry: registry,
		Deposited: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wealthsimple_deposited",
			Help: "the total amount deposited",
		}, accountLabels),
		Withdrawn: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wealthsimple_withdrawn",
			Help: "the total amount withdrawn",
		}, accountLabels),
		NetLiquidation: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wealthsimple_net_liquidation",
			Help: "the value of the account if it were to be liquidated",
		}, accountLabels),
		GrossPosition: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wealthsimple_gross_position",
			Help: "sum of all positions in the account",
		}, accountLabels),
	}
}

// Registry returns the underlying registry for serving.
func (s *Sink) Registry() *prometheus.Registry {
	return s.registry
}
