package troubleshoot_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/kubeship/kubeship/pkg/troubleshoot"
	"github.com/kubeship/kubeship/pkg/troubleshoot/mock"
)

func oomKilledPod() *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "orders-5d8f-x2x9z", Namespace: "shop"},
		Spec:       corev1.PodSpec{RestartPolicy: corev1.RestartPolicyAlways},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodScheduled, Status: corev1.ConditionTrue},
				{Type: corev1.PodReady, Status: corev1.ConditionFalse},
			},
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:         "app",
				RestartCount: 6,
				State: corev1.ContainerState{
					Waiting: &corev1.ContainerStateWaiting{Reason: "CrashLoopBackOff"},
				},
				LastTerminationState: corev1.ContainerState{
					Terminated: &corev1.ContainerStateTerminated{Reason: "OOMKilled", ExitCode: 137},
				},
			}},
		},
	}
}

var _ = Describe("Service", func() {
	var (
		mockCtrl      *gomock.Controller
		mockCollector *mock.MockCollector
		info          troubleshoot.ServiceInfo
		auth          troubleshoot.ClusterAuth
		ctx           context.Context
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockCollector = mock.NewMockCollector(mockCtrl)
		info = troubleshoot.ServiceInfo{ServiceName: "orders"}
		auth = troubleshoot.ClusterAuth{Kubeconfig: "/tmp/kubeconfig"}
		ctx = context.Background()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	contextWith := func(pods ...runtime.Object) *troubleshoot.Context {
		tc := troubleshoot.NewContext(info, "shop", false)
		tc.SetResourceInfos(troubleshoot.KindPod, pods)
		return tc
	}

	When("constructing the service", func() {
		It("requires a collector", func() {
			_, err := troubleshoot.NewService(nil)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a cyclic graph", func() {
			loop := &troubleshoot.Condition{Name: "loop", Decide: func(*troubleshoot.Context) (bool, error) { return true, nil }}
			loop.OnSuccess, loop.OnFailure = loop, loop

			_, err := troubleshoot.NewService(mockCollector, troubleshoot.WithEntry(loop))
			Expect(errors.Is(err, troubleshoot.ErrCyclicGraph)).To(BeTrue())
		})
	})

	When("the input is invalid", func() {
		It("rejects an empty service name without collecting", func() {
			svc, err := troubleshoot.NewService(mockCollector)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Troubleshoot(ctx, troubleshoot.ServiceInfo{}, auth, "shop")
			Expect(errors.Is(err, troubleshoot.ErrInvalidInput)).To(BeTrue())

			var inputErr troubleshoot.InputValidationError
			Expect(errors.As(err, &inputErr)).To(BeTrue())
			Expect(inputErr.Field).To(Equal("serviceName"))
		})

		It("rejects an empty namespace without collecting", func() {
			svc, err := troubleshoot.NewService(mockCollector)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Troubleshoot(ctx, info, auth, "")
			Expect(errors.Is(err, troubleshoot.ErrInvalidInput)).To(BeTrue())
		})
	})

	When("the collector fails", func() {
		It("returns the collector error unchanged", func() {
			unreachable := errors.New("dial tcp 10.0.0.1:6443: connect: connection refused")
			mockCollector.EXPECT().Build(gomock.Any(), info, auth, "shop").Return(nil, unreachable)

			svc, err := troubleshoot.NewService(mockCollector)
			Expect(err).ToNot(HaveOccurred())

			reports, err := svc.Troubleshoot(ctx, info, auth, "shop")
			Expect(err).To(BeIdenticalTo(unreachable))
			Expect(reports).To(BeNil())
		})

		It("fails when no context is returned", func() {
			mockCollector.EXPECT().Build(gomock.Any(), info, auth, "shop").Return(nil, nil)

			svc, err := troubleshoot.NewService(mockCollector)
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Troubleshoot(ctx, info, auth, "shop")
			Expect(err).To(HaveOccurred())
		})
	})

	When("the cluster state is collected", func() {
		It("diagnoses an out of memory crash", func() {
			mockCollector.EXPECT().Build(gomock.Any(), info, auth, "shop").Return(contextWith(oomKilledPod()), nil)

			svc, err := troubleshoot.NewService(mockCollector)
			Expect(err).ToNot(HaveOccurred())

			reports, err := svc.Troubleshoot(ctx, info, auth, "shop")
			Expect(err).ToNot(HaveOccurred())
			Expect(reports).To(HaveLen(1))
			Expect(reports[0].Reason).To(ContainSubstring("OOMKilled"))
			Expect(reports[0].RecommendedFix).To(Equal("Increase the memory limit of the service."))
		})

		It("reports a missing diagnosis", func() {
			mockCollector.EXPECT().Build(gomock.Any(), info, auth, "shop").Return(contextWith(), nil)

			silent := &troubleshoot.Action{Name: "silent", Process: func(*troubleshoot.Context) error { return nil }}
			svc, err := troubleshoot.NewService(mockCollector, troubleshoot.WithEntry(silent))
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Troubleshoot(ctx, info, auth, "shop")
			Expect(errors.Is(err, troubleshoot.ErrNoDiagnosis)).To(BeTrue())
		})

		It("surfaces malformed snapshots as step errors", func() {
			tc := troubleshoot.NewContext(info, "shop", false)
			tc.SetResourceInfos(troubleshoot.KindPod, []runtime.Object{&corev1.Service{}})
			mockCollector.EXPECT().Build(gomock.Any(), info, auth, "shop").Return(tc, nil)

			svc, err := troubleshoot.NewService(mockCollector, troubleshoot.WithMaxSteps(16))
			Expect(err).ToNot(HaveOccurred())

			_, err = svc.Troubleshoot(ctx, info, auth, "shop")
			var stepErr troubleshoot.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			var malformed troubleshoot.MalformedSnapshotError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.Kind).To(Equal(troubleshoot.KindPod))
		})
	})
})
