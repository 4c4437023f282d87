package troubleshoot

import (
	"errors"

	g "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

var _ = g.Describe("Rule graph", func() {
	var (
		tc      *Context
		outcome Outcome
		err     error
	)

	diagnose := func() []DiagnosisReport {
		outcome, err = runGraph(tc)
		Expect(err).ToNot(HaveOccurred())
		return tc.Reports()
	}

	g.It("is acyclic and complete", func() {
		depth, err := Validate(NewRuleGraph())
		Expect(err).ToNot(HaveOccurred())
		Expect(depth).To(Equal(9))
	})

	g.Describe("when no pods are observed", func() {
		g.It("reports the service as not deployed", func() {
			tc = newTestContext()
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring("not deployed"))
			Expect(reports[0].Reason).To(ContainSubstring(`"orders"`))
			Expect(reports[0].RecommendedFix).To(ContainSubstring("service name and namespace"))
			Expect(outcome.Terminal.Name).To(Equal("service-not-deployed"))
		})

		g.It("treats a pod kind that was never populated as no pods", func() {
			tc = NewContext(ServiceInfo{ServiceName: testService}, testNamespace, false)
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring("not deployed"))
		})

		g.It("explains a deployment scaled to zero", func() {
			tc = newTestContext()
			tc.SetResourceInfos(KindDeployment, []runtime.Object{newDeployment(testService, 0)})
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring(`Deployment "orders"`))
			Expect(reports[0].Reason).To(ContainSubstring("scaled to zero"))
			Expect(outcome.Terminal.Name).To(Equal("workload-has-no-pods"))
		})

		g.It("surfaces the deployment's replica failure", func() {
			tc = newTestContext()
			tc.SetResourceInfos(KindDeployment, []runtime.Object{
				newDeployment("orders-canary", 2),
				newDeployment(testService, 2, appsv1.DeploymentCondition{
					Type:    appsv1.DeploymentReplicaFailure,
					Status:  corev1.ConditionTrue,
					Reason:  "FailedCreate",
					Message: `pods "orders-7d9" is forbidden: exceeded quota: compute`,
				}),
			})
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring(`Deployment "orders"`))
			Expect(reports[0].Reason).To(ContainSubstring("exceeded quota"))
		})

		g.It("falls back to replica set conditions", func() {
			tc = newTestContext()
			tc.SetResourceInfos(KindDeployment, []runtime.Object{newDeployment(testService, 1)})
			tc.SetResourceInfos(KindReplicaSet, []runtime.Object{&appsv1.ReplicaSet{
				ObjectMeta: metav1.ObjectMeta{Name: "orders-5d8f"},
				Status: appsv1.ReplicaSetStatus{Conditions: []appsv1.ReplicaSetCondition{{
					Type:    appsv1.ReplicaSetReplicaFailure,
					Status:  corev1.ConditionTrue,
					Reason:  "FailedCreate",
					Message: "serviceaccount \"orders\" not found",
				}}},
			}})
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring("replica set orders-5d8f"))
			Expect(reports[0].Reason).To(ContainSubstring("serviceaccount"))
		})
	})

	g.Describe("when every pod is ready", func() {
		g.It("reports the service as healthy", func() {
			tc = newTestContext(newReadyPod("orders-a"), newReadyPod("orders-b"))
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring("2 pods are ready"))
			Expect(reports[0].Healthy).To(BeTrue())
			Expect(outcome.Terminal.Name).To(Equal("service-healthy"))
		})

		g.It("ignores pods that are being deleted", func() {
			terminating := newUnreadyPod("orders-old")
			now := metav1.Now()
			terminating.DeletionTimestamp = &now
			tc = newTestContext(terminating, newReadyPod("orders-new"))
			diagnose()
			Expect(outcome.Terminal.Name).To(Equal("service-healthy"))
		})
	})

	g.Describe("when a container crashes", func() {
		g.It("recommends more memory for an OOMKilled service", func() {
			tc = newTestContext(newReadyPod("orders-a"), newCrashLoopingPod("orders-b", reasonOOMKilled, 137))
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring("orders"))
			Expect(reports[0].Reason).To(ContainSubstring("memory"))
			Expect(reports[0].RecommendedFix).To(ContainSubstring("Increase the memory limit"))
			Expect(reports[0].Healthy).To(BeFalse())
			Expect(outcome.Terminal.Name).To(Equal("fix-crashing-application"))
		})

		g.It("blames the start command when the process exits cleanly", func() {
			tc = newTestContext(newCrashLoopingPod("orders-a", reasonCompleted, 0))
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring("start command"))
			Expect(reports[0].Reason).To(ContainSubstring("misconfigured"))
		})

		g.DescribeTable("decoding the exit code",
			func(exitCode int32, expected string) {
				tc = newTestContext(newCrashLoopingPod("orders-a", "Error", exitCode))
				reports := diagnose()
				Expect(reports).To(HaveLen(1))
				Expect(reports[0].Reason).To(ContainSubstring(expected))
				Expect(reports[0].RecommendedFix).To(Equal(fixApplicationCrash))
			},
			g.Entry("kill signal", int32(137), "SIGKILL"),
			g.Entry("terminate signal", int32(143), "SIGTERM"),
			g.Entry("segmentation fault", int32(139), "SIGSEGV"),
			g.Entry("unmapped code", int32(7), "exit code 7"),
			g.Entry("generic failure", int32(1), "exit code 1"),
		)

		g.It("reports a generic crash when no last state is known", func() {
			pod := newCrashLoopingPod("orders-a", "Error", 1)
			pod.Status.ContainerStatuses[0].LastTerminationState = corev1.ContainerState{}
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring("keeps crashing"))
			Expect(reports[0].RecommendedFix).To(Equal(fixApplicationCrash))
		})

		g.It("reports a generic crash when the failed pod was never recorded", func() {
			tc = newTestContext()
			Expect(fixCrashingApplication(tc)).To(Succeed())
			Expect(tc.Reports()).To(HaveLen(1))
			Expect(tc.Reports()[0].Reason).To(ContainSubstring("keeps crashing"))
		})

		g.It("detects a container that terminated without backing off yet", func() {
			pod := newUnreadyPod("orders-a")
			pod.Status.ContainerStatuses = []corev1.ContainerStatus{{
				Name:  "app",
				State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{Reason: "Error", ExitCode: 143}},
			}}
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring("SIGTERM"))
		})
	})

	g.Describe("when the pod cannot start", func() {
		g.It("reports the scheduler's reason", func() {
			pod := newPod("orders-a", corev1.PodCondition{
				Type:    corev1.PodScheduled,
				Status:  corev1.ConditionFalse,
				Reason:  corev1.PodReasonUnschedulable,
				Message: "0/3 nodes are available: 3 Insufficient memory.",
			})
			pod.Status.Phase = corev1.PodPending
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring("cannot be scheduled"))
			Expect(reports[0].Reason).To(ContainSubstring("Insufficient memory"))
			Expect(outcome.Terminal.Name).To(Equal("pod-unschedulable"))
		})

		g.It("reports the image that cannot be pulled", func() {
			pod := newUnreadyPod("orders-a")
			pod.Status.ContainerStatuses = []corev1.ContainerStatus{{
				Name:  "app",
				Image: "registry.example.com/orders:missing",
				State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"}},
			}}
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring("registry.example.com/orders:missing"))
			Expect(outcome.Terminal.Name).To(Equal("image-pull-failure"))
		})

		g.It("reports the init container that did not complete", func() {
			pod := newPod("orders-a",
				condition(corev1.PodInitialized, corev1.ConditionFalse),
				condition(corev1.PodReady, corev1.ConditionFalse),
			)
			pod.Status.Phase = corev1.PodPending
			pod.Status.InitContainerStatuses = []corev1.ContainerStatus{
				{Name: "wait-for-db", State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 0, Reason: reasonCompleted}}},
				{Name: "migrate", State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 1, Reason: "Error"}}},
			}
			pod.Status.ContainerStatuses = []corev1.ContainerStatus{{
				Name:  "app",
				State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "PodInitializing"}},
			}}
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring(`Init container "migrate"`))
			Expect(outcome.Terminal.Name).To(Equal("init-container-failing"))
		})

		g.It("reports a container failing its readiness probe", func() {
			pod := newUnreadyPod("orders-a")
			pod.Status.ContainerStatuses = []corev1.ContainerStatus{{
				Name:  "app",
				State: corev1.ContainerState{Running: &corev1.ContainerStateRunning{}},
			}}
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring("never becomes ready"))
			Expect(outcome.Terminal.Name).To(Equal("readiness-probe-failing"))
		})

		g.It("reports an evicted pod", func() {
			pod := newPod("orders-a")
			pod.Status.Phase = corev1.PodFailed
			pod.Status.Reason = reasonEvicted
			pod.Status.Message = "The node was low on resource: memory."
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports[0].Reason).To(ContainSubstring("evicted"))
			Expect(reports[0].Reason).To(ContainSubstring("low on resource"))
		})

		g.It("falls back to the cluster administrator when nothing matches", func() {
			pod := newPod("orders-a")
			pod.Status.Phase = corev1.PodPending
			pod.Status.ContainerStatuses = []corev1.ContainerStatus{{
				Name:  "app",
				State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "ContainerCreating"}},
			}}
			tc = newTestContext(pod)
			reports := diagnose()
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].RecommendedFix).To(Equal("Contact your cluster administrator."))
			Expect(outcome.Terminal.Name).To(Equal("contact-cluster-administrator"))
		})
	})

	g.Describe("traversal properties", func() {
		snapshots := func() []*corev1.Pod {
			return []*corev1.Pod{newReadyPod("orders-a"), newCrashLoopingPod("orders-b", "Error", 139)}
		}

		g.It("produces identical reports for identical snapshots", func() {
			first := newTestContext(snapshots()...)
			second := newTestContext(snapshots()...)
			_, err := runGraph(first)
			Expect(err).ToNot(HaveOccurred())
			_, err = runGraph(second)
			Expect(err).ToNot(HaveOccurred())
			Expect(second.Reports()).To(Equal(first.Reports()))
		})

		g.It("does not change its decision when tracing", func() {
			plain := newTestContext(snapshots()...)
			traced := NewContext(ServiceInfo{ServiceName: testService}, testNamespace, true)
			objs, _ := plain.ResourceInfos(KindPod)
			traced.SetResourceInfos(KindPod, objs)
			_, err := runGraph(plain)
			Expect(err).ToNot(HaveOccurred())
			_, err = runGraph(traced)
			Expect(err).ToNot(HaveOccurred())
			Expect(traced.Reports()).To(Equal(plain.Reports()))
		})

		g.It("terminates within the depth of the graph", func() {
			depth, err := Validate(NewRuleGraph())
			Expect(err).ToNot(HaveOccurred())
			for _, pods := range [][]*corev1.Pod{nil, snapshots(), {newReadyPod("orders-a")}} {
				tc = newTestContext(pods...)
				diagnose()
				Expect(len(outcome.Path)).To(BeNumerically("<=", depth))
				Expect(tc.Reports()).To(HaveLen(1))
			}
		})

		g.It("stops on a malformed snapshot without producing a report", func() {
			tc = NewContext(ServiceInfo{ServiceName: testService}, testNamespace, false)
			tc.SetResourceInfos(KindPod, []runtime.Object{&appsv1.Deployment{}})
			_, err := runGraph(tc)
			Expect(err).To(HaveOccurred())
			var stepErr StepError
			Expect(err).To(BeAssignableToTypeOf(stepErr))
			Expect(err.Error()).To(ContainSubstring("pods-observed"))
			Expect(err.Error()).To(ContainSubstring("malformed Pod snapshot"))
			Expect(tc.Reports()).To(BeEmpty())
		})

		g.It("stops on a nil pod snapshot instead of dereferencing it", func() {
			tc = NewContext(ServiceInfo{ServiceName: testService}, testNamespace, false)
			tc.SetResourceInfos(KindPod, []runtime.Object{(*corev1.Pod)(nil)})
			var err error
			Expect(func() { _, err = runGraph(tc) }).NotTo(Panic())
			var malformed MalformedSnapshotError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.Got).To(Equal("nil *v1.Pod"))
			Expect(tc.Reports()).To(BeEmpty())
		})
	})
})
