package k8sclient

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// initScheme initializes the runtime scheme with the APIs read during troubleshooting.
func initScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()

	if err := corev1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("unable to add corev1 scheme: %w", err)
	}

	if err := appsv1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("unable to add appsv1 scheme: %w", err)
	}

	return scheme, nil
}

// Scheme returns the runtime scheme used by kubeship clients.
func Scheme() (*runtime.Scheme, error) {
	return initScheme()
}
