package troubleshoot

import (
	"k8s.io/apimachinery/pkg/labels"
)

// ServiceInfo identifies the service under diagnosis.
type ServiceInfo struct {
	ServiceName string
	// AppName is the value of the "app" label carried by the service's pods.
	// Defaults to ServiceName when empty.
	AppName   string
	Namespace string
	Image     string
	Port      int
	Replicas  int32
	// Labels overrides the default app=<AppName> pod selector when set.
	Labels map[string]string
}

// App returns the application name, falling back to the service name.
func (s ServiceInfo) App() string {
	if s.AppName != "" {
		return s.AppName
	}
	return s.ServiceName
}

// Selector returns the label selector matching the service's pods.
func (s ServiceInfo) Selector() labels.Selector {
	if len(s.Labels) > 0 {
		return labels.SelectorFromSet(s.Labels)
	}
	return labels.SelectorFromSet(labels.Set{"app": s.App()})
}

// ClusterAuth holds what is needed to reach the cluster.
type ClusterAuth struct {
	// Kubeconfig is the path to a kubeconfig file. Empty uses the default loading rules.
	Kubeconfig string
	// Context selects a kubeconfig context. Empty uses the current context.
	Context string
}
