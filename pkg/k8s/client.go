package k8sclient

import (
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	k8scli "sigs.k8s.io/controller-runtime/pkg/client"
)

// RestConfig loads a rest config from the given kubeconfig path and context.
// Empty values fall back to the default kubeconfig loading rules and the current context.
func RestConfig(kubeconfig, kubeContext string) (*rest.Config, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		loadingRules.ExplicitPath = kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load kubeconfig: %w", err)
	}
	return cfg, nil
}

// New returns a cluster client for the given kubeconfig path and context.
func New(kubeconfig, kubeContext string) (k8scli.Client, error) {
	cfg, err := RestConfig(kubeconfig, kubeContext)
	if err != nil {
		return nil, err
	}
	return NewForConfig(cfg)
}

// NewForConfig returns a cluster client for cfg using the kubeship scheme.
func NewForConfig(cfg *rest.Config) (k8scli.Client, error) {
	scheme, err := initScheme()
	if err != nil {
		return nil, err
	}

	cli, err := k8scli.New(cfg, k8scli.Options{Scheme: scheme})
	if err != nil {
		return nil, MatchError(fmt.Errorf("could not create k8s client: %w", err))
	}
	return cli, nil
}
