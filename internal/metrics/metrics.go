// Package metrics exposes import activity as Prometheus metrics.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records import outcomes and the size of the current schedule.
type Recorder struct {
	imports       *prometheus.CounterVec
	rows          *prometheus.CounterVec
	emptyMeetings prometheus.Counter
	skippedRows   prometheus.Counter
	duration      *prometheus.HistogramVec
	courses       prometheus.Gauge
	sections      prometheus.Gauge
}

// New registers the import metrics on reg. If reg is nil, the default
// registerer is used. Collectors that are already registered are reused, so
// New may be called more than once against the same registry.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_imports_total",
			Help: "Schedule imports by file type and outcome code",
		}, []string{"type", "additive", "code"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_import_rows_total",
			Help: "Data rows applied by schedule imports",
		}, []string{"type"}),
		emptyMeetings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_import_empty_meetings_total",
			Help: "Blank meetings dropped while merging imported rows",
		}),
		skippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_import_skipped_rows_total",
			Help: "Blank or malformed rows skipped during import",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_import_duration_seconds",
			Help:    "Time spent decoding, parsing and merging an import",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		courses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_courses",
			Help: "Courses in the current schedule",
		}),
		sections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_sections",
			Help: "Sections in the current schedule",
		}),
	}

	var err error
	if r.imports, err = register(reg, r.imports); err != nil {
		return nil, err
	}
	if r.rows, err = register(reg, r.rows); err != nil {
		return nil, err
	}
	if r.emptyMeetings, err = register(reg, r.emptyMeetings); err != nil {
		return nil, err
	}
	if r.skippedRows, err = register(reg, r.skippedRows); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, r.duration); err != nil {
		return nil, err
	}
	if r.courses, err = register(reg, r.courses); err != nil {
		return nil, err
	}
	if r.sections, err = register(reg, r.sections); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ImportSucceeded records a completed import.
func (r *Recorder) ImportSucceeded(fileType string, additive bool, rows, skipped, emptyMeetings int, d time.Duration) {
	r.imports.WithLabelValues(fileType, strconv.FormatBool(additive), "OK").Inc()
	r.rows.WithLabelValues(fileType).Add(float64(rows))
	r.skippedRows.Add(float64(skipped))
	r.emptyMeetings.Add(float64(emptyMeetings))
	r.duration.WithLabelValues(fileType).Observe(d.Seconds())
}

// ImportFailed records a rejected import under its user-facing error code.
func (r *Recorder) ImportFailed(fileType string, additive bool, code string) {
	r.imports.WithLabelValues(fileType, strconv.FormatBool(additive), code).Inc()
}

// ScheduleSize records the size of the schedule now being served.
func (r *Recorder) ScheduleSize(courses, sections int) {
	r.courses.Set(float64(courses))
	r.sections.Set(float64(sections))
}
