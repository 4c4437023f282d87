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

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/pkg/troubleshoot"
)

// DefaultServiceFile is read when no service file is passed.
const DefaultServiceFile = "./service.yaml"

// DefaultNamespace is used when neither the command line nor the service file names one.
const DefaultNamespace = "default"

type Config struct {
	LogLevel string

	Kubeconfig  string
	KubeContext string

	Namespace   string
	ServiceFile string

	Trace    bool
	MaxSteps int
}

// AddFlags registers the troubleshoot flags on cmd. The log level is a
// persistent flag of the root command.
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("kubeconfig", "", "path to the kubeconfig file, defaults to the standard loading rules")
	cmd.Flags().String("context", "", "the kubeconfig context to use")
	cmd.Flags().StringP("namespace", "n", "", "the namespace the service runs in")
	cmd.Flags().StringP("service-file", "f", DefaultServiceFile, "the path to the service description")
	cmd.Flags().Bool("trace", false, "log every step of the decision graph")
	cmd.Flags().Int("max-steps", troubleshoot.DefaultMaxSteps, "the maximum number of steps a single troubleshoot run may take")
}

func BuildConfig(cmd *cobra.Command) (Config, error) {
	var c Config
	var err error

	if c.LogLevel, err = getLogLevel(cmd); err != nil {
		return c, fmt.Errorf("failed to get log level: %w", err)
	}

	if c.Kubeconfig, err = getStringFlagOrEnv(cmd, "kubeconfig", "KUBECONFIG"); err != nil {
		return c, fmt.Errorf("failed to get kubeconfig: %w", err)
	}

	if c.KubeContext, err = getStringFlagOrEnv(cmd, "context", "KUBESHIP_KUBE_CONTEXT"); err != nil {
		return c, fmt.Errorf("failed to get kube context: %w", err)
	}

	if c.Namespace, err = getStringFlagOrEnv(cmd, "namespace", "KUBESHIP_NAMESPACE"); err != nil {
		return c, fmt.Errorf("failed to get namespace: %w", err)
	}

	if c.ServiceFile, err = cmd.Flags().GetString("service-file"); err != nil {
		return c, fmt.Errorf("failed to get service file: %w", err)
	}

	if c.Trace, err = getTrace(cmd); err != nil {
		return c, fmt.Errorf("failed to get trace flag: %w", err)
	}

	if c.MaxSteps, err = cmd.Flags().GetInt("max-steps"); err != nil {
		return c, fmt.Errorf("failed to get max steps: %w", err)
	}
	if c.MaxSteps <= 0 {
		return c, fmt.Errorf("max-steps must be positive, got %d", c.MaxSteps)
	}

	return c, nil
}

// ResolveNamespace returns the namespace to troubleshoot in. The configured
// namespace wins over the one declared by the service file.
func (c Config) ResolveNamespace(declared string) string {
	if c.Namespace != "" {
		return c.Namespace
	}
	if declared != "" {
		return declared
	}
	return DefaultNamespace
}

func getLogLevel(cmd *cobra.Command) (string, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return "", fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if logLevel != "" {
		return logLevel, nil
	}

	if envLogLevel, exists := os.LookupEnv("LOG_LEVEL"); exists {
		return envLogLevel, nil
	}

	return "info", nil
}

// getStringFlagOrEnv returns the value of flag when it was set on the command
// line, otherwise the value of the environment variable env.
func getStringFlagOrEnv(cmd *cobra.Command, flag, env string) (string, error) {
	value, err := cmd.Flags().GetString(flag)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", flag, err)
	}
	if cmd.Flags().Changed(flag) {
		return value, nil
	}

	if envValue, exists := os.LookupEnv(env); exists {
		return envValue, nil
	}

	return value, nil
}

// getTrace retrieves the trace flag. If not set, it checks the KUBESHIP_TRACE
// environment variable, which must hold a boolean.
func getTrace(cmd *cobra.Command) (bool, error) {
	trace, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return false, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if cmd.Flags().Changed("trace") {
		return trace, nil
	}

	envTrace, exists := os.LookupEnv("KUBESHIP_TRACE")
	if !exists {
		return trace, nil
	}
	trace, err = strconv.ParseBool(envTrace)
	if err != nil {
		return false, fmt.Errorf("KUBESHIP_TRACE must be a boolean: %w", err)
	}
	return trace, nil
}
