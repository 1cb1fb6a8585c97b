package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the onboarding service.
type Metrics struct {
	PipelineRuns       *prometheus.CounterVec
	StepExecutions     *prometheus.CounterVec
	AssistantFallbacks prometheus.Counter
	NotificationsSent  *prometheus.CounterVec
	EmployeesCreated   prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		PipelineRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_pipeline_runs_total",
			Help: "Pipeline runs by final employee status",
		}, []string{"status"}),
		StepExecutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_step_executions_total",
			Help: "Step executions by step name and run log status",
		}, []string{"step", "status"}),
		AssistantFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_assistant_fallbacks_total",
			Help: "Assistant calls that degraded to the local fallback",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_notifications_sent_total",
			Help: "Notifications dispatched by channel",
		}, []string{"channel"}),
		EmployeesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_employees_created_total",
			Help: "Employees created via API or CSV import",
		}),
	}
}

// ObserveStep records one step execution outcome. Nil-safe so steps can run
// without metrics in unit tests.
func (m *Metrics) ObserveStep(step, status string) {
	if m == nil {
		return
	}
	m.StepExecutions.WithLabelValues(step, status).Inc()
}

// ObserveRun records one pipeline run outcome.
func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(status).Inc()
}

// ObserveAssistantFallback counts a degraded assistant call.
func (m *Metrics) ObserveAssistantFallback() {
	if m == nil {
		return
	}
	m.AssistantFallbacks.Inc()
}

// ObserveEmployeeCreated counts a new employee record.
func (m *Metrics) ObserveEmployeeCreated() {
	if m == nil {
		return
	}
	m.EmployeesCreated.Inc()
}

// ObserveNotification counts a dispatched notification.
func (m *Metrics) ObserveNotification(channel string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(channel).Inc()
}
