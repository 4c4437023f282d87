package troubleshoot

import "fmt"

type message struct {
	reason string
	fix    string
}

func (m message) report(args ...any) DiagnosisReport {
	return DiagnosisReport{Reason: fmt.Sprintf(m.reason, args...), RecommendedFix: m.fix}
}

const fixApplicationCrash = "Inspect the logs of the previous container run (kubectl logs --previous) and fix the error that makes the application exit."

var (
	msgServiceNotDeployed = message{
		reason: "Service %q is not deployed: no resource found in namespace %q.",
		fix:    "Confirm the deployment was attempted and check that the service name and namespace are correct.",
	}
	msgWorkloadHasNoPods = message{
		reason: "Deployment %q exists but has no pods: %s.",
		fix:    "Check the deployment's replica count, the namespace resource quotas and the events of its ReplicaSet.",
	}
	msgServiceHealthy = message{
		reason: "Service %q is healthy: %d pods are ready and none is failing.",
		fix:    "If the service is still unreachable, check its Service and Ingress configuration.",
	}
	msgPodEvicted = message{
		reason: "Pod %q of service %q was evicted: %s",
		fix:    "Lower the service's resource usage or set requests matching its real consumption so the node does not evict it.",
	}
	msgUnschedulable = message{
		reason: "Pod %q of service %q cannot be scheduled: %s",
		fix:    "Lower the resource requests, relax node selectors and affinities, or add tolerations or nodes with enough capacity.",
	}
	msgImagePullFailure = message{
		reason: "Container %q of service %q cannot pull image %q: %s.",
		fix:    "Check that the image exists, that its tag is correct and that the cluster has credentials for the registry.",
	}
	msgInitFailing = message{
		reason: "Init container %q of service %q has not completed: %s.",
		fix:    "Inspect the logs of the init container and the resources it waits for.",
	}
	msgReadinessFailing = message{
		reason: "Container %q of service %q is running but never becomes ready.",
		fix:    "Check the readiness probe path, port and timeouts against what the application actually serves.",
	}
	msgOOMKilled = message{
		reason: "Service %q ran out of memory and was killed (OOMKilled).",
		fix:    "Increase the memory limit of the service.",
	}
	msgInvalidStartCommand = message{
		reason: "Service %q exited successfully right after starting; its start command is likely invalid or misconfigured.",
		fix:    "Make sure the start command runs the service in the foreground instead of exiting.",
	}
	msgCrashedWithSignal = message{
		reason: "Service %q crashed: container %q was terminated by %s.",
		fix:    fixApplicationCrash,
	}
	msgCrashedWithExitCode = message{
		reason: "Service %q crashed: container %q stopped with exit code %d.",
		fix:    fixApplicationCrash,
	}
	msgApplicationCrash = message{
		reason: "Service %q keeps crashing.",
		fix:    fixApplicationCrash,
	}
	msgContactAdministrator = message{
		reason: "Service %q is not healthy and no application-level cause was found; the problem is likely in the deployment environment.",
		fix:    "Contact your cluster administrator.",
	}
)
