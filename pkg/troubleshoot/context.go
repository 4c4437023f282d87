package troubleshoot

import (
	"fmt"
	"slices"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// Resource kinds populated by collectors.
const (
	KindPod        = "Pod"
	KindDeployment = "Deployment"
	KindReplicaSet = "ReplicaSet"
)

// Context is the state shared by all steps of a single troubleshoot run.
// It must not be shared between runs.
type Context struct {
	serviceInfo   ServiceInfo
	namespace     string
	resourceInfos map[string][]runtime.Object
	attributes    map[any]any
	reports       []DiagnosisReport
	trace         bool
}

// NewContext creates an empty context for the given service and namespace.
func NewContext(info ServiceInfo, namespace string, trace bool) *Context {
	return &Context{
		serviceInfo:   info,
		namespace:     namespace,
		resourceInfos: make(map[string][]runtime.Object),
		attributes:    make(map[any]any),
		trace:         trace,
	}
}

func (c *Context) ServiceInfo() ServiceInfo { return c.serviceInfo }

func (c *Context) Namespace() string { return c.namespace }

func (c *Context) Trace() bool { return c.trace }

// SetResourceInfos records the snapshots captured for kind. Collectors call this
// while building the context; rules only read.
func (c *Context) SetResourceInfos(kind string, objs []runtime.Object) {
	c.resourceInfos[kind] = slices.Clone(objs)
}

// ResourceInfos returns the snapshots captured for kind. The second return value
// is false when the kind was never populated, which is distinct from an empty list.
func (c *Context) ResourceInfos(kind string) ([]runtime.Object, bool) {
	objs, ok := c.resourceInfos[kind]
	if !ok {
		return nil, false
	}
	return slices.Clone(objs), true
}

// Pods returns the Pod snapshots. A snapshot of any other type, or a nil
// pointer, is reported as a MalformedSnapshotError.
func (c *Context) Pods() ([]*corev1.Pod, error) {
	return snapshotsOf[corev1.Pod](c, KindPod)
}

// Deployments returns the Deployment snapshots.
func (c *Context) Deployments() ([]*appsv1.Deployment, error) {
	return snapshotsOf[appsv1.Deployment](c, KindDeployment)
}

// ReplicaSets returns the ReplicaSet snapshots.
func (c *Context) ReplicaSets() ([]*appsv1.ReplicaSet, error) {
	return snapshotsOf[appsv1.ReplicaSet](c, KindReplicaSet)
}

func snapshotsOf[T any, PT interface {
	*T
	runtime.Object
}](c *Context, kind string) ([]PT, error) {
	objs := c.resourceInfos[kind]
	out := make([]PT, 0, len(objs))
	for i, obj := range objs {
		typed, ok := obj.(PT)
		if !ok {
			return nil, MalformedSnapshotError{Kind: kind, Index: i, Got: fmt.Sprintf("%T", obj)}
		}
		if typed == nil {
			return nil, MalformedSnapshotError{Kind: kind, Index: i, Got: fmt.Sprintf("nil %T", obj)}
		}
		out = append(out, typed)
	}
	return out, nil
}

// AddReport appends a report. Reports are kept in insertion order and are not deduplicated.
func (c *Context) AddReport(report DiagnosisReport) {
	c.reports = append(c.reports, report)
}

// Reports returns a copy of the reports collected so far.
func (c *Context) Reports() []DiagnosisReport {
	return slices.Clone(c.reports)
}
