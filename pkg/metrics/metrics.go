// Package metrics provides prometheus instrumentation for kubeship
package metrics

import (
	"os"

	"github.com/kubeship/kubeship/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
)

// PushGatewayEnv names the environment variable holding the pushgateway URL.
const PushGatewayEnv = "KUBESHIP_PROMETHEUS_PUSHGATEWAY"

// Push collects and pushes metrics to the configured pushgateway
func Push() {
	pushgateway := os.Getenv(PushGatewayEnv)
	if pushgateway == "" {
		logging.Debugf("metrics disabled, set env '%s' to push metrics", PushGatewayEnv)
		return
	}
	PushTo(pushgateway)
}

// PushTo pushes all kubeship collectors to the given pushgateway URL.
func PushTo(pushgateway string) {
	promPusher := push.New(pushgateway, "kubeship").Format(expfmt.NewFormat(expfmt.TypeTextPlain))
	promPusher.Collector(TroubleshootRuns)
	promPusher.Collector(Diagnoses)
	if err := promPusher.Add(); err != nil {
		logging.Errorf("failed to push metrics: %v", err)
	}
}

// Inc takes a counterVec and a set of label values and increases by one
func Inc(counterVec *prometheus.CounterVec, lsv ...string) {
	metric, err := counterVec.GetMetricWithLabelValues(lsv...)
	if err != nil {
		logging.Error(err)
		return
	}
	metric.Inc()
}

const (
	namespace             = "kubeship"
	subsystemTroubleshoot = "troubleshoot"
	resultLabel           = "result"
	causeLabel            = "cause"

	ResultDiagnosed    = "diagnosed"
	ResultFailed       = "failed"
	ResultInvalidInput = "invalid_input"
)

var (
	// TroubleshootRuns counts troubleshoot invocations by result
	TroubleshootRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemTroubleshoot,
			Name: "runs_total",
			Help: "counts troubleshoot runs by result",
		}, []string{resultLabel})
	// Diagnoses counts diagnoses by the rule that produced them
	Diagnoses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemTroubleshoot,
			Name: "diagnoses_total",
			Help: "counts diagnoses by the terminal rule that produced them",
		}, []string{causeLabel})
)
