// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// gqlcheck validates GraphQL query documents against a schema, either from
// files on the command line or over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	var cfgFile string
	cmd := &cobra.Command{
		Use:          "gqlcheck <command>",
		Short:        "Check GraphQL documents for misplaced selection sets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.gqlcheck.yaml)")
	cmd.PersistentFlags().String("schema", "", "GraphQL schema file")
	v.BindPFlag("schema", cmd.PersistentFlags().Lookup("schema"))

	cmd.AddCommand(newCheckCommand(v))
	cmd.AddCommand(newServeCommand(v))
	return cmd
}

// initConfig reads the config file, if any, and environment variables with
// the GQLCHECK_ prefix. A missing default config file is not an error.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return xerrors.Errorf("init config: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".gqlcheck")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("gqlcheck")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && xerrors.As(err, &notFound) {
			return nil
		}
		return xerrors.Errorf("init config: %w", err)
	}
	return nil
}
