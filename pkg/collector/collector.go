// Package collector captures the cluster state of a service for troubleshooting.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	k8sclient "github.com/kubeship/kubeship/pkg/k8s"
	"github.com/kubeship/kubeship/pkg/troubleshoot"
	"github.com/kubeship/kubeship/pkg/utils"
)

const (
	defaultRetries    = 3
	defaultRetrySleep = 500 * time.Millisecond
)

// Kubernetes builds troubleshooting contexts from a live cluster.
type Kubernetes struct {
	client     client.Client
	trace      bool
	logger     *zap.SugaredLogger
	retries    int
	retrySleep time.Duration
}

type Option func(*Kubernetes)

// WithRetry sets how often listing pods is attempted while the API server is
// unavailable, and the initial backoff between attempts.
func WithRetry(count int, sleep time.Duration) Option {
	return func(k *Kubernetes) {
		k.retries = max(count, 1)
		k.retrySleep = sleep
	}
}

// New returns a collector reading through cli.
func New(cli client.Client, trace bool, logger *zap.SugaredLogger, opts ...Option) *Kubernetes {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	k := &Kubernetes{client: cli, trace: trace, logger: logger, retries: defaultRetries, retrySleep: defaultRetrySleep}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// NewForAuth returns a collector connected to the cluster described by auth.
func NewForAuth(auth troubleshoot.ClusterAuth, trace bool, logger *zap.SugaredLogger, opts ...Option) (*Kubernetes, error) {
	cli, err := k8sclient.New(auth.Kubeconfig, auth.Context)
	if err != nil {
		return nil, err
	}
	return New(cli, trace, logger, opts...), nil
}

// Build lists the pods, deployments and replica sets of the service. Failing
// to list pods is an error. Deployments and replica sets whose API is not
// served are left out of the context.
func (k *Kubernetes) Build(ctx context.Context, info troubleshoot.ServiceInfo, _ troubleshoot.ClusterAuth, namespace string) (*troubleshoot.Context, error) {
	tc := troubleshoot.NewContext(info, namespace, k.trace)
	selector := client.MatchingLabelsSelector{Selector: info.Selector()}

	pods := &corev1.PodList{}
	err := utils.Retry(ctx, k.retries, k.retrySleep, isUnavailable, func() error {
		if err := k.client.List(ctx, pods, client.InNamespace(namespace), selector); err != nil {
			k.logger.Debugf("listing pods of %s failed: %v", info.ServiceName, err)
			return k8sclient.MatchError(fmt.Errorf("unable to list pods of %s in %s: %w", info.ServiceName, namespace, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(pods.Items, func(i, j int) bool { return pods.Items[i].Name < pods.Items[j].Name })
	podObjs := toObjects(pods.Items)
	tc.SetResourceInfos(troubleshoot.KindPod, podObjs)
	k.logger.Debugf("collected %d pods for %s", len(podObjs), info.ServiceName)

	deployments, err := k.deployments(ctx, info, namespace)
	if err != nil {
		return nil, err
	}
	if deployments != nil {
		tc.SetResourceInfos(troubleshoot.KindDeployment, deployments)
		k.logger.Debugf("collected %d deployments for %s", len(deployments), info.ServiceName)
	}

	replicaSets, err := k.replicaSets(ctx, info, namespace)
	if err != nil {
		return nil, err
	}
	if replicaSets != nil {
		tc.SetResourceInfos(troubleshoot.KindReplicaSet, replicaSets)
		k.logger.Debugf("collected %d replica sets for %s", len(replicaSets), info.ServiceName)
	}

	return tc, nil
}

// deployments returns the deployment named after the service, or the ones
// matching its selector. A nil result means the kind could not be resolved.
func (k *Kubernetes) deployments(ctx context.Context, info troubleshoot.ServiceInfo, namespace string) ([]runtime.Object, error) {
	named := &appsv1.Deployment{}
	err := k.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: info.ServiceName}, named)
	switch {
	case err == nil:
		return []runtime.Object{named}, nil
	case isUnresolvable(err):
		k.logger.Debugf("deployments of %s unavailable: %v", info.ServiceName, err)
		return nil, nil
	case !apierrors.IsNotFound(err):
		return nil, k8sclient.MatchError(fmt.Errorf("unable to get deployment %s in %s: %w", info.ServiceName, namespace, err))
	}

	list := &appsv1.DeploymentList{}
	err = k.client.List(ctx, list, client.InNamespace(namespace), client.MatchingLabelsSelector{Selector: info.Selector()})
	if err != nil {
		if isUnresolvable(err) {
			return nil, nil
		}
		return nil, k8sclient.MatchError(fmt.Errorf("unable to list deployments of %s in %s: %w", info.ServiceName, namespace, err))
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Name < list.Items[j].Name })
	return toObjects(list.Items), nil
}

func (k *Kubernetes) replicaSets(ctx context.Context, info troubleshoot.ServiceInfo, namespace string) ([]runtime.Object, error) {
	list := &appsv1.ReplicaSetList{}
	err := k.client.List(ctx, list, client.InNamespace(namespace), client.MatchingLabelsSelector{Selector: info.Selector()})
	if err != nil {
		if isUnresolvable(err) {
			k.logger.Debugf("replica sets of %s unavailable: %v", info.ServiceName, err)
			return nil, nil
		}
		return nil, k8sclient.MatchError(fmt.Errorf("unable to list replica sets of %s in %s: %w", info.ServiceName, namespace, err))
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Name < list.Items[j].Name })
	return toObjects(list.Items), nil
}

func isUnavailable(err error) bool {
	return errors.Is(err, k8sclient.ErrAPIServerUnavailable)
}

// isUnresolvable reports errors meaning the kind is not served by the cluster.
func isUnresolvable(err error) bool {
	return meta.IsNoMatchError(err) || runtime.IsNotRegisteredError(err) || (apierrors.IsNotFound(err) && isListNotFound(err))
}

// isListNotFound distinguishes a 404 for the whole resource type from a
// missing named object.
func isListNotFound(err error) bool {
	status, ok := err.(apierrors.APIStatus)
	if !ok {
		return false
	}
	details := status.Status().Details
	return details == nil || details.Name == ""
}

func toObjects[T any, PT interface {
	*T
	runtime.Object
}](items []T) []runtime.Object {
	objs := make([]runtime.Object, 0, len(items))
	for i := range items {
		objs = append(objs, PT(&items[i]))
	}
	return objs
}
