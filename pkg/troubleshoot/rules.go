package troubleshoot

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/utils/ptr"
)

var (
	failedPodKey  = NewKey[*corev1.Pod]("failed-pod")
	deploymentKey = NewKey[*appsv1.Deployment]("deployment")
)

// NewRuleGraph builds the diagnostic decision graph and returns its entry node.
// Nodes hold no per-run state, so one graph serves every run.
func NewRuleGraph() Node {
	contactAdministrator := &Action{
		Name:        "contact-cluster-administrator",
		Description: "no application-level cause found",
		Process:     contactClusterAdministrator,
	}

	readinessFailing := &Condition{
		Name:        "readiness-failing",
		Description: "containers run but are never ready",
		Decide:      isReadinessFailing,
		OnSuccess: &Action{
			Name:        "readiness-probe-failing",
			Description: "report the container failing its readiness probe",
			Process:     reportReadinessFailing,
		},
		OnFailure: contactAdministrator,
	}

	initFailing := &Condition{
		Name:        "init-failing",
		Description: "pod is not initialized",
		Decide:      isInitFailing,
		OnSuccess: &Action{
			Name:        "init-container-failing",
			Description: "report the init container that did not complete",
			Process:     reportInitFailing,
		},
		OnFailure: readinessFailing,
	}

	crashLooping := &Condition{
		Name:        "crash-looping",
		Description: "a container crashes or restarts",
		Decide:      isCrashLooping,
		OnSuccess: &Action{
			Name:        "fix-crashing-application",
			Description: "explain why the application terminated",
			Process:     fixCrashingApplication,
		},
		OnFailure: initFailing,
	}

	imagePull := &Condition{
		Name:        "image-pull-failure",
		Description: "a container image cannot be pulled",
		Decide:      isImagePullFailure,
		OnSuccess: &Action{
			Name:        "image-pull-failure",
			Description: "report the image that cannot be pulled",
			Process:     reportImagePullFailure,
		},
		OnFailure: crashLooping,
	}

	unschedulable := &Condition{
		Name:        "unschedulable",
		Description: "pod cannot be placed on a node",
		Decide:      isUnschedulable,
		OnSuccess: &Action{
			Name:        "pod-unschedulable",
			Description: "report the scheduler's reason",
			Process:     reportUnschedulable,
		},
		OnFailure: imagePull,
	}

	evicted := &Condition{
		Name:        "pod-evicted",
		Description: "pod was evicted by its node",
		Decide:      isEvicted,
		OnSuccess: &Action{
			Name:        "pod-evicted",
			Description: "report the eviction",
			Process:     reportEvicted,
		},
		OnFailure: unschedulable,
	}

	podFailing := &Condition{
		Name:        "pod-failing",
		Description: "a pod of the service is not ready",
		Decide:      findFailedPod,
		OnSuccess:   evicted,
		OnFailure: &Action{
			Name:        "service-healthy",
			Description: "every pod is ready",
			Process:     reportServiceHealthy,
		},
	}

	deploymentObserved := &Condition{
		Name:        "deployment-observed",
		Description: "a deployment exists for the service",
		Decide:      findDeployment,
		OnSuccess: &Action{
			Name:        "workload-has-no-pods",
			Description: "explain why the deployment has no pods",
			Process:     reportWorkloadHasNoPods,
		},
		OnFailure: &Action{
			Name:        "service-not-deployed",
			Description: "nothing was deployed for the service",
			Process:     reportServiceNotDeployed,
		},
	}

	return &Condition{
		Name:        "pods-observed",
		Description: "pods exist for the service",
		Decide:      hasPods,
		OnSuccess:   podFailing,
		OnFailure:   deploymentObserved,
	}
}

func hasPods(c *Context) (bool, error) {
	pods, err := c.Pods()
	if err != nil {
		return false, err
	}
	return len(pods) > 0, nil
}

func findDeployment(c *Context) (bool, error) {
	deployments, err := c.Deployments()
	if err != nil {
		return false, err
	}
	if len(deployments) == 0 {
		return false, nil
	}
	chosen := deployments[0]
	for _, d := range deployments {
		if d.Name == c.ServiceInfo().ServiceName {
			chosen = d
			break
		}
	}
	AddAttribute(c, deploymentKey, chosen)
	return true, nil
}

// findFailedPod records the first pod that is neither ready nor finished.
// Pods being deleted are ignored.
func findFailedPod(c *Context) (bool, error) {
	pods, err := c.Pods()
	if err != nil {
		return false, err
	}
	for _, pod := range pods {
		if pod.DeletionTimestamp != nil || pod.Status.Phase == corev1.PodSucceeded {
			continue
		}
		if !isPodReady(pod) {
			AddAttribute(c, failedPodKey, pod)
			return true, nil
		}
	}
	return false, nil
}

func failedPod(c *Context) (*corev1.Pod, bool) {
	pod, ok := GetAttribute(c, failedPodKey)
	return pod, ok && pod != nil
}

// onFailedPod adapts a predicate over the failed pod into a decision. Without
// a failed pod the predicate does not hold.
func onFailedPod(predicate func(*corev1.Pod) bool) func(*Context) (bool, error) {
	return func(c *Context) (bool, error) {
		pod, ok := failedPod(c)
		if !ok {
			return false, nil
		}
		return predicate(pod), nil
	}
}

var (
	isEvicted = onFailedPod(func(pod *corev1.Pod) bool {
		return pod.Status.Phase == corev1.PodFailed && pod.Status.Reason == reasonEvicted
	})
	isUnschedulable = onFailedPod(func(pod *corev1.Pod) bool {
		cond := findPodCondition(pod, corev1.PodScheduled)
		return cond != nil && cond.Status == corev1.ConditionFalse && cond.Reason == corev1.PodReasonUnschedulable
	})
	isImagePullFailure = onFailedPod(func(pod *corev1.Pod) bool {
		return imagePullFailure(pod) != nil
	})
	isCrashLooping = onFailedPod(func(pod *corev1.Pod) bool {
		return crashedContainer(pod) != nil
	})
	isInitFailing = onFailedPod(func(pod *corev1.Pod) bool {
		return isConditionFalse(pod, corev1.PodInitialized) && pendingInitContainer(pod) != nil
	})
	isReadinessFailing = onFailedPod(func(pod *corev1.Pod) bool {
		return isConditionFalse(pod, corev1.ContainersReady) && unreadyRunningContainer(pod) != nil
	})
)

func reportServiceNotDeployed(c *Context) error {
	c.AddReport(msgServiceNotDeployed.report(c.ServiceInfo().ServiceName, c.Namespace()))
	return nil
}

func reportWorkloadHasNoPods(c *Context) error {
	deployment, ok := GetAttribute(c, deploymentKey)
	if !ok || deployment == nil {
		return reportServiceNotDeployed(c)
	}
	detail, err := noPodsDetail(c, deployment)
	if err != nil {
		return err
	}
	c.AddReport(msgWorkloadHasNoPods.report(deployment.Name, detail))
	return nil
}

func noPodsDetail(c *Context, deployment *appsv1.Deployment) (string, error) {
	for _, cond := range deployment.Status.Conditions {
		if cond.Type == appsv1.DeploymentReplicaFailure && cond.Status == corev1.ConditionTrue {
			return joinReason(cond.Reason, cond.Message), nil
		}
	}
	if ptr.Deref(deployment.Spec.Replicas, 1) == 0 {
		return "it is scaled to zero replicas", nil
	}
	replicaSets, err := c.ReplicaSets()
	if err != nil {
		return "", err
	}
	for _, rs := range replicaSets {
		for _, cond := range rs.Status.Conditions {
			if cond.Type == appsv1.ReplicaSetReplicaFailure && cond.Status == corev1.ConditionTrue {
				return fmt.Sprintf("replica set %s: %s", rs.Name, joinReason(cond.Reason, cond.Message)), nil
			}
		}
	}
	return "no pod has been created yet", nil
}

func reportServiceHealthy(c *Context) error {
	pods, err := c.Pods()
	if err != nil {
		return err
	}
	ready := 0
	for _, pod := range pods {
		if isPodReady(pod) {
			ready++
		}
	}
	report := msgServiceHealthy.report(c.ServiceInfo().ServiceName, ready)
	report.Healthy = true
	c.AddReport(report)
	return nil
}

func reportEvicted(c *Context) error {
	pod, ok := failedPod(c)
	if !ok {
		return contactClusterAdministrator(c)
	}
	c.AddReport(msgPodEvicted.report(pod.Name, c.ServiceInfo().ServiceName, joinReason("", pod.Status.Message)))
	return nil
}

func reportUnschedulable(c *Context) error {
	pod, ok := failedPod(c)
	if !ok {
		return contactClusterAdministrator(c)
	}
	detail := "no reason reported"
	if cond := findPodCondition(pod, corev1.PodScheduled); cond != nil {
		detail = joinReason("", cond.Message)
	}
	c.AddReport(msgUnschedulable.report(pod.Name, c.ServiceInfo().ServiceName, detail))
	return nil
}

func reportImagePullFailure(c *Context) error {
	pod, ok := failedPod(c)
	if !ok {
		return contactClusterAdministrator(c)
	}
	status := imagePullFailure(pod)
	if status == nil {
		return contactClusterAdministrator(c)
	}
	c.AddReport(msgImagePullFailure.report(status.Name, c.ServiceInfo().ServiceName, status.Image, containerStateDetail(status)))
	return nil
}

func reportInitFailing(c *Context) error {
	pod, ok := failedPod(c)
	if !ok {
		return contactClusterAdministrator(c)
	}
	status := pendingInitContainer(pod)
	if status == nil {
		return contactClusterAdministrator(c)
	}
	c.AddReport(msgInitFailing.report(status.Name, c.ServiceInfo().ServiceName, containerStateDetail(status)))
	return nil
}

func reportReadinessFailing(c *Context) error {
	pod, ok := failedPod(c)
	if !ok {
		return contactClusterAdministrator(c)
	}
	status := unreadyRunningContainer(pod)
	if status == nil {
		return contactClusterAdministrator(c)
	}
	c.AddReport(msgReadinessFailing.report(status.Name, c.ServiceInfo().ServiceName))
	return nil
}

// fixCrashingApplication explains the last termination of the crashed
// container of the failed pod. Without termination details it reports a
// generic crash.
func fixCrashingApplication(c *Context) error {
	name := c.ServiceInfo().ServiceName

	pod, ok := failedPod(c)
	if !ok {
		c.AddReport(msgApplicationCrash.report(name))
		return nil
	}
	status := crashedContainer(pod)
	if status == nil {
		c.AddReport(msgApplicationCrash.report(name))
		return nil
	}
	terminated := lastTermination(status)
	if terminated == nil {
		c.AddReport(msgApplicationCrash.report(name))
		return nil
	}

	switch {
	case terminated.Reason == reasonOOMKilled:
		c.AddReport(msgOOMKilled.report(name))
	case terminated.Reason == reasonCompleted && terminated.ExitCode == 0:
		c.AddReport(msgInvalidStartCommand.report(name))
	default:
		if signal, ok := SignalName(terminated.ExitCode); ok {
			c.AddReport(msgCrashedWithSignal.report(name, status.Name, signal))
		} else {
			c.AddReport(msgCrashedWithExitCode.report(name, status.Name, terminated.ExitCode))
		}
	}
	return nil
}

func contactClusterAdministrator(c *Context) error {
	c.AddReport(msgContactAdministrator.report(c.ServiceInfo().ServiceName))
	return nil
}
