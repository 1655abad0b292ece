package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 习惯操作计数
	HabitActionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_action_count",
			Help: "Total number of habit actions dispatched",
		},
		[]string{"action", "outcome"}, // outcome: applied, rejected, duplicate
	)

	// 重复提交被拦截计数
	DuplicateSubmissionCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habit_duplicate_submission_count",
			Help: "Add-habit form submissions skipped as duplicates",
		},
	)

	HabitsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "habits_total",
		Help: "Number of habits currently tracked",
	})

	HabitsCompleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "habits_completed",
		Help: "Number of habits currently marked completed",
	})

	HabitsCompletionPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "habits_completion_percent",
		Help: "Rounded completion percentage of today's habits",
	})
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementHabitAction 增加习惯操作计数
func IncrementHabitAction(action, outcome string) {
	HabitActionCount.WithLabelValues(action, outcome).Inc()
}

// IncrementDuplicateSubmission 增加重复提交计数
func IncrementDuplicateSubmission() {
	DuplicateSubmissionCount.Inc()
}

// SetHabitProgress 更新当前进度
func SetHabitProgress(completed, total, percentage int) {
	HabitsTotal.Set(float64(total))
	HabitsCompleted.Set(float64(completed))
	HabitsCompletionPercent.Set(float64(percentage))
}
