package troubleshoot

import "fmt"

// DiagnosisReport is a single cause and the remediation recommended for it.
type DiagnosisReport struct {
	Reason         string
	RecommendedFix string
	// Healthy is set when the run found nothing wrong with the service.
	Healthy bool
}

func (r DiagnosisReport) String() string {
	return fmt.Sprintf("%s (fix: %s)", r.Reason, r.RecommendedFix)
}
