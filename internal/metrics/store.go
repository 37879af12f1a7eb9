package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "存储层操作总数。",
		},
		[]string{"op"},
	)

	storeOpsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jobboard",
			Subsystem: "store",
			Name:      "operations_failed_total",
			Help:      "存储层操作失败总数，按失败类别区分。",
		},
		[]string{"op", "reason"},
	)

	storeOpsInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "jobboard",
			Subsystem: "store",
			Name:      "operations_in_progress",
			Help:      "当前正在执行的存储层操作数量。",
		},
		[]string{"op"},
	)
)

// FailureClassifier 把错误归类为指标标签，例如 validation / integrity / not_found。
type FailureClassifier func(error) string

// TrackStoreOp 记录一次存储层操作的计数、失败与并发度。
func TrackStoreOp(op string, classify FailureClassifier, fn func() error) error {
	storeOpsInProgress.WithLabelValues(op).Inc()
	defer storeOpsInProgress.WithLabelValues(op).Dec()

	err := fn()
	if err != nil {
		reason := "error"
		if classify != nil {
			reason = classify(err)
		}
		storeOpsFailed.WithLabelValues(op, reason).Inc()
	}

	storeOpsTotal.WithLabelValues(op).Inc()

	return err
}
