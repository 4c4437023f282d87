package notewriter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kubeship/kubeship/pkg/troubleshoot"
)

type NoteWriter struct {
	serviceName string
	sb          strings.Builder
	logger      *zap.SugaredLogger
}

// New initializes a new NoteWriter with an optional logger.
// The note is initialized with a header in the following format:
// 🔎 Troubleshooting report for %s 🔎
// ===========================
//
// E.g.
// 🔎 Troubleshooting report for orders 🔎
// ===========================
func New(serviceName string, logger *zap.SugaredLogger) *NoteWriter {
	nw := &NoteWriter{serviceName: serviceName, logger: logger}
	nw.sb.WriteString(fmt.Sprintf("🔎 Troubleshooting report for %s 🔎\n", serviceName))
	nw.sb.WriteString("===========================\n")
	return nw
}

// String() returns the current full string format of the built note
func (n *NoteWriter) String() string {
	return n.sb.String()
}

func (n *NoteWriter) writeWithLog(format string, a ...any) {
	if n.logger != nil {
		n.logger.Debugf(format, a...)
	}

	n.sb.WriteString(fmt.Sprintf(format, a...))
}

// AppendSuccess should be used when a check passed, e.g.
// ✅ Service "orders" is healthy: 3 pods are ready and none is failing.
// Format appended to the note:
// ✅ <my string>\n
func (n *NoteWriter) AppendSuccess(format string, a ...any) {
	n.writeWithLog("✅ %s\n", fmt.Sprintf(format, a...))
}

// AppendWarning should be used when a check found an issue, e.g.
// ⚠️ Service "orders" ran out of memory and was killed (OOMKilled).
// Format appended to the note:
// ⚠️ <my string>\n
func (n *NoteWriter) AppendWarning(format string, a ...any) {
	n.writeWithLog("⚠️ %s\n", fmt.Sprintf(format, a...))
}

// AppendRecommendation adds an indented remediation line, e.g.
//
//	💡 Increase the memory limit of the service.
func (n *NoteWriter) AppendRecommendation(format string, a ...any) {
	n.writeWithLog("   💡 %s\n", fmt.Sprintf(format, a...))
}

// AppendDiagnosis writes a report as a numbered line followed by its fix. A
// healthy report is written as a success, any other as a warning.
func (n *NoteWriter) AppendDiagnosis(index int, report troubleshoot.DiagnosisReport) {
	if report.Healthy {
		n.AppendSuccess("%d. %s", index, report.Reason)
	} else {
		n.AppendWarning("%d. %s", index, report.Reason)
	}
	if report.RecommendedFix != "" {
		n.AppendRecommendation("%s", report.RecommendedFix)
	}
}

// FromReports renders all reports of a troubleshoot run.
func FromReports(serviceName string, reports []troubleshoot.DiagnosisReport, logger *zap.SugaredLogger) *NoteWriter {
	nw := New(serviceName, logger)
	if len(reports) == 0 {
		nw.AppendSuccess("no diagnosis was produced")
		return nw
	}
	for i, report := range reports {
		nw.AppendDiagnosis(i+1, report)
	}
	return nw
}
