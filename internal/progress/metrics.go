package progress

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

const namespace = "silverscan"

// Metrics counts events in a private prometheus registry so a finished
// run can be exported as a node_exporter textfile
type Metrics struct {
	registry *prometheus.Registry

	events   *prometheus.CounterVec
	warnings *prometheus.CounterVec
	files    *prometheus.GaugeVec
	dirs     *prometheus.GaugeVec
	bytes    *prometheus.GaugeVec

	groups     prometheus.Gauge
	duplicates prometheus.Gauge
	wasted     prometheus.Gauge
	duration   prometheus.Gauge
}

// NewMetrics creates and registers the scan collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Pipeline events by stage and type",
		}, []string{"stage", "type"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Recovered per-item failures by stage and kind",
		}, []string{"stage", "kind"}),
		files: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processed_files",
			Help:      "Files processed by stage",
		}, []string{"stage"}),
		dirs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processed_dirs",
			Help:      "Directories processed by stage",
		}, []string{"stage"}),
		bytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "processed_bytes",
			Help:      "Bytes seen by stage",
		}, []string{"stage"}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicate_groups",
			Help:      "Duplicate groups found",
		}),
		duplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicate_files",
			Help:      "Files that belong to a duplicate group",
		}),
		wasted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wasted_bytes",
			Help:      "Bytes reclaimable by keeping one copy per group",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of the last scan",
		}),
	}

	m.registry.MustRegister(m.events, m.warnings, m.files, m.dirs, m.bytes,
		m.groups, m.duplicates, m.wasted, m.duration)
	return m
}

// Emit updates counters for e
func (m *Metrics) Emit(e models.Event) {
	stage := string(e.EventStage())

	switch ev := e.(type) {
	case models.ProgressEvent:
		m.events.WithLabelValues(stage, "progress").Inc()
		m.files.WithLabelValues(stage).Set(float64(ev.ProcessedFiles))
		m.dirs.WithLabelValues(stage).Set(float64(ev.ProcessedDirs))
	case models.WarningEvent:
		m.events.WithLabelValues(stage, "warning").Inc()
		m.warnings.WithLabelValues(stage, string(ev.Kind)).Inc()
	case models.CompleteEvent:
		m.events.WithLabelValues(stage, "complete").Inc()
		m.files.WithLabelValues(stage).Set(float64(ev.ProcessedFiles))
		m.dirs.WithLabelValues(stage).Set(float64(ev.ProcessedDirs))
		m.bytes.WithLabelValues(stage).Set(float64(ev.TotalBytes))
	}
}

// ObserveResults records the outcome of a finished scan
func (m *Metrics) ObserveResults(r *models.ScanResults) {
	m.groups.Set(float64(len(r.Groups)))
	m.duplicates.Set(float64(r.DuplicateFiles))
	m.wasted.Set(float64(r.WastedSpace))
	m.duration.Set(r.Duration.Seconds())
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
