package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ticks           prometheus.Counter
	staleTicks      prometheus.Counter
	candles         prometheus.Counter
	droppedCloses   prometheus.Counter
	cycles          *prometheus.CounterVec
	decisionLatency prometheus.Histogram
	stake           prometheus.Gauge
	step            prometheus.Gauge
	outcomes        *prometheus.CounterVec
	outcomeErrors   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "fivesec_ticks_total",
			Help: "Ticks folded into candles",
		}),
		staleTicks: f.NewCounter(prometheus.CounterOpts{
			Name: "fivesec_stale_ticks_total",
			Help: "Ticks rejected because their window was already closed",
		}),
		candles: f.NewCounter(prometheus.CounterOpts{
			Name: "fivesec_candles_closed_total",
			Help: "Closed non-empty candles",
		}),
		droppedCloses: f.NewCounter(prometheus.CounterOpts{
			Name: "fivesec_close_events_dropped_total",
			Help: "Close events dropped while a cycle was in flight",
		}),
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fivesec_decision_cycles_total",
			Help: "Decision cycles by result and reason",
		}, []string{"result", "reason"}),
		decisionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fivesec_decision_latency_seconds",
			Help:    "Time from candle close to decision",
			Buckets: []float64{.0005, .001, .002, .004, .008, .012, .015, .02, .05, .1},
		}),
		stake: f.NewGauge(prometheus.GaugeOpts{
			Name: "fivesec_stake_amount",
			Help: "Stake of the last dispatched trade",
		}),
		step: f.NewGauge(prometheus.GaugeOpts{
			Name: "fivesec_martingale_step",
			Help: "Current martingale step",
		}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fivesec_trade_outcomes_total",
			Help: "Settled trades by result",
		}, []string{"result"}),
		outcomeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fivesec_outcome_errors_total",
			Help: "Outcomes that could not be matched to a dispatched trade",
		}, []string{"kind"}),
	}
}
