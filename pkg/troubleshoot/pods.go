package troubleshoot

import (
	corev1 "k8s.io/api/core/v1"
)

const (
	reasonCrashLoopBackOff = "CrashLoopBackOff"
	reasonOOMKilled        = "OOMKilled"
	reasonCompleted        = "Completed"
	reasonEvicted          = "Evicted"
)

var imagePullReasons = map[string]bool{
	"ErrImagePull":      true,
	"ImagePullBackOff":  true,
	"InvalidImageName":  true,
	"ErrImageNeverPull": true,
}

func findPodCondition(pod *corev1.Pod, conditionType corev1.PodConditionType) *corev1.PodCondition {
	for i := range pod.Status.Conditions {
		if pod.Status.Conditions[i].Type == conditionType {
			return &pod.Status.Conditions[i]
		}
	}
	return nil
}

func isPodReady(pod *corev1.Pod) bool {
	cond := findPodCondition(pod, corev1.PodReady)
	return cond != nil && cond.Status == corev1.ConditionTrue
}

func isConditionFalse(pod *corev1.Pod, conditionType corev1.PodConditionType) bool {
	cond := findPodCondition(pod, conditionType)
	return cond != nil && cond.Status == corev1.ConditionFalse
}

// lastTermination returns the termination state of the container's previous
// run, or of the current run when the container is not restarting.
func lastTermination(status *corev1.ContainerStatus) *corev1.ContainerStateTerminated {
	if status.LastTerminationState.Terminated != nil {
		return status.LastTerminationState.Terminated
	}
	return status.State.Terminated
}

// crashedContainer returns the container of the pod that is crash looping or
// has terminated abnormally. A CrashLoopBackOff container wins over one that
// merely has a termination record.
func crashedContainer(pod *corev1.Pod) *corev1.ContainerStatus {
	var terminated *corev1.ContainerStatus
	for i := range pod.Status.ContainerStatuses {
		status := &pod.Status.ContainerStatuses[i]
		if status.State.Waiting != nil && status.State.Waiting.Reason == reasonCrashLoopBackOff {
			return status
		}
		if terminated != nil {
			continue
		}
		switch {
		case status.State.Terminated != nil && status.State.Terminated.ExitCode != 0:
			terminated = status
		case status.State.Terminated != nil && pod.Spec.RestartPolicy == corev1.RestartPolicyAlways:
			terminated = status
		case status.LastTerminationState.Terminated != nil && status.RestartCount > 0 && !status.Ready:
			terminated = status
		}
	}
	return terminated
}

func imagePullFailure(pod *corev1.Pod) *corev1.ContainerStatus {
	statuses := append(append([]corev1.ContainerStatus{}, pod.Status.InitContainerStatuses...), pod.Status.ContainerStatuses...)
	for i := range statuses {
		if w := statuses[i].State.Waiting; w != nil && imagePullReasons[w.Reason] {
			return &statuses[i]
		}
	}
	return nil
}

// pendingInitContainer returns the first init container that has not completed.
func pendingInitContainer(pod *corev1.Pod) *corev1.ContainerStatus {
	for i := range pod.Status.InitContainerStatuses {
		status := &pod.Status.InitContainerStatuses[i]
		if t := status.State.Terminated; t != nil && t.ExitCode == 0 {
			continue
		}
		return status
	}
	return nil
}

// unreadyRunningContainer returns a container that runs but is not ready, as
// long as no container of the pod is in another state.
func unreadyRunningContainer(pod *corev1.Pod) *corev1.ContainerStatus {
	var unready *corev1.ContainerStatus
	for i := range pod.Status.ContainerStatuses {
		status := &pod.Status.ContainerStatuses[i]
		if status.State.Running == nil {
			return nil
		}
		if !status.Ready && unready == nil {
			unready = status
		}
	}
	return unready
}

func containerStateDetail(status *corev1.ContainerStatus) string {
	switch {
	case status.State.Waiting != nil:
		return joinReason(status.State.Waiting.Reason, status.State.Waiting.Message)
	case status.State.Terminated != nil:
		return joinReason(status.State.Terminated.Reason, status.State.Terminated.Message)
	case status.State.Running != nil:
		return "still running"
	}
	return "state unknown"
}

func joinReason(reason, message string) string {
	switch {
	case reason == "" && message == "":
		return "no reason reported"
	case message == "":
		return reason
	case reason == "":
		return message
	}
	return reason + ": " + message
}
