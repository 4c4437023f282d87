// Package cmd holds the kubeship command tree
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

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kubeship/kubeship/kubeship/cmd/troubleshoot"
)

// NewRootCmd returns the kubeship command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kubeship",
		Short: "Diagnose why a service deployed to Kubernetes is not healthy",
	}
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "the log level [debug,info,warn,error,fatal], default = info")
	rootCmd.AddCommand(troubleshoot.NewTroubleshootCmd())
	return rootCmd
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
