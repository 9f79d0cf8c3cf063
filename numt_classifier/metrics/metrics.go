package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"onsm/numt_classifier/common"
)

const namespace = "onsm"

// Run holds the counters of one classification run on a private registry, so
// several runs in one process (tests) never collide.
type Run struct {
	reg *prometheus.Registry

	records    *prometheus.CounterVec
	loci       prometheus.Gauge
	calls      *prometheus.CounterVec
	confidence prometheus.Histogram
	stage      *prometheus.GaugeVec
	coveredBP  *prometheus.GaugeVec
}

// NewRun registers all collectors.
func NewRun() *Run {
	r := &Run{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alignment_records_total",
			Help:      "Alignment records read, by direction and outcome.",
		}, []string{"direction", "outcome"}),
		loci: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidate_loci",
			Help:      "Candidate loci produced by the pair builder.",
		}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Classified loci by call.",
		}, []string{"call"}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_confidence",
			Help:      "Distribution of |score_numt - score_nimt|.",
			Buckets:   []float64{0.05, 0.1, 0.15, 0.2, 0.3, 0.5, 0.75, 1},
		}),
		stage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage.",
		}, []string{"stage"}),
		coveredBP: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "covered_bp",
			Help:      "Interval-union base pairs per summary metric.",
		}, []string{"metric"}),
	}
	r.reg.MustRegister(r.records, r.loci, r.calls, r.confidence, r.stage, r.coveredBP)
	return r
}

// Registry exposes the gatherer, mainly for tests.
func (r *Run) Registry() *prometheus.Registry {
	return r.reg
}

// Records adds n records of direction with the given outcome (kept, rejected, filtered).
func (r *Run) Records(direction, outcome string, n int) {
	r.records.WithLabelValues(direction, outcome).Add(float64(n))
}

// Loci sets the candidate locus count.
func (r *Run) Loci(n int) {
	r.loci.Set(float64(n))
}

// Observe counts one classified locus.
func (r *Run) Observe(c common.Classification) {
	r.calls.WithLabelValues(c.Call.String()).Inc()
	r.confidence.Observe(c.Confidence)
}

// Stage records how long a stage took.
func (r *Run) Stage(name string, d time.Duration) {
	r.stage.WithLabelValues(name).Set(d.Seconds())
}

// Summary exports the covered base counts.
func (r *Run) Summary(m common.SummaryMetrics) {
	r.coveredBP.WithLabelValues("nuclear_bp_numt").Set(float64(m.NuclearBPNUMT))
	r.coveredBP.WithLabelValues("mito_bp_nimt").Set(float64(m.MitoBPNIMT))
	r.coveredBP.WithLabelValues("mito_bp_numt_homologs").Set(float64(m.MitoBPNUMTHomologs))
	r.coveredBP.WithLabelValues("nuclear_bp_nimt_homologs").Set(float64(m.NuclearBPNIMTHomologs))
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
