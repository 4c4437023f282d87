// Package troubleshoot holds the troubleshoot command
/*
Copyright © 2025 Red Hat, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package troubleshoot

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/kubeship/config"
	"github.com/kubeship/kubeship/pkg/collector"
	"github.com/kubeship/kubeship/pkg/logging"
	"github.com/kubeship/kubeship/pkg/metrics"
	"github.com/kubeship/kubeship/pkg/notewriter"
	"github.com/kubeship/kubeship/pkg/servicespec"
	"github.com/kubeship/kubeship/pkg/troubleshoot"
)

func NewTroubleshootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "troubleshoot",
		SilenceUsage: true,
		Short:        "Diagnose why the described service is not healthy",
		Args:         cobra.NoArgs,
		RunE:         run,
	}
	config.AddFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.BuildConfig(cmd)
	if err != nil {
		return err
	}

	spec, err := servicespec.Load(cfg.ServiceFile)
	if err != nil {
		return err
	}
	info := spec.ServiceInfo()
	namespace := cfg.ResolveNamespace(spec.Namespace)

	// initialize logger for the service context
	logging.RawLogger = logging.InitLoggerWithService(cfg.LogLevel, info.ServiceName, namespace)
	defer func() { _ = logging.RawLogger.Sync() }()
	defer metrics.Push()

	if cfg.Namespace == "" && spec.Namespace == "" {
		logging.Warnf("no namespace configured for %s, using %q", info.ServiceName, namespace)
	}

	auth := troubleshoot.ClusterAuth{Kubeconfig: cfg.Kubeconfig, Context: cfg.KubeContext}
	k8sCollector, err := collector.NewForAuth(auth, cfg.Trace, logging.RawLogger)
	if err != nil {
		return fmt.Errorf("could not initialize kubernetes client: %w", err)
	}

	svc, err := troubleshoot.NewService(k8sCollector,
		troubleshoot.WithLogger(logging.RawLogger),
		troubleshoot.WithMaxSteps(cfg.MaxSteps),
	)
	if err != nil {
		return err
	}

	logging.Infof("troubleshooting service %s in namespace %s", info.ServiceName, namespace)
	reports, err := svc.Troubleshoot(cmd.Context(), info, auth, namespace)
	if err != nil {
		return fmt.Errorf("troubleshooting %s failed: %w", info.ServiceName, err)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), notewriter.FromReports(info.ServiceName, reports, logging.RawLogger).String())
	return err
}
