package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Источник создания урока
const (
	SourceRequest = "request"
	SourceDirect  = "direct"
)

// Metrics собирает Prometheus-метрики бронирования в собственный registry
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	slotsGenerated     *prometheus.CounterVec
	slotGeneration     prometheus.Histogram
	lessonsCreated     *prometheus.CounterVec
	lessonConflicts    *prometheus.CounterVec
	lessonsCancelled   prometheus.Counter
	ruleConflicts      prometheus.Counter
	requestTransitions *prometheus.CounterVec
}

// New регистрирует коллекторы
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		slotsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_scheduler_slots_generated_total",
			Help: "Candidate slots produced by slot generation",
		}, []string{"available"}),
		slotGeneration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tutor_scheduler_slot_generation_seconds",
			Help:    "Duration of slot generation for one tutor day",
			Buckets: prometheus.DefBuckets,
		}),
		lessonsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_scheduler_lessons_created_total",
			Help: "Lessons created",
		}, []string{"source"}),
		lessonConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_scheduler_lesson_conflicts_total",
			Help: "Lesson creations rejected because the interval was taken",
		}, []string{"source"}),
		lessonsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutor_scheduler_lessons_cancelled_total",
			Help: "Lessons cancelled",
		}),
		ruleConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutor_scheduler_rule_conflicts_total",
			Help: "Availability rules rejected because of an overlapping active rule",
		}),
		requestTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_scheduler_request_transitions_total",
			Help: "Lesson request state transitions",
		}, []string{"from", "to"}),
	}

	registry.MustRegister(
		m.slotsGenerated,
		m.slotGeneration,
		m.lessonsCreated,
		m.lessonConflicts,
		m.lessonsCancelled,
		m.ruleConflicts,
		m.requestTransitions,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registry нужен тестам для чтения значений
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveSlotGeneration(started time.Time, available, taken int) {
	m.slotGeneration.Observe(time.Since(started).Seconds())
	m.slotsGenerated.WithLabelValues("true").Add(float64(available))
	m.slotsGenerated.WithLabelValues("false").Add(float64(taken))
}

func (m *Metrics) LessonCreated(source string) {
	m.lessonsCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) LessonConflict(source string) {
	m.lessonConflicts.WithLabelValues(source).Inc()
}

func (m *Metrics) LessonCancelled() {
	m.lessonsCancelled.Inc()
}

func (m *Metrics) RuleConflict() {
	m.ruleConflicts.Inc()
}

func (m *Metrics) RequestTransition(from, to string) {
	m.requestTransitions.WithLabelValues(from, to).Inc()
}
