// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements the remotelog-collector command line.
package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	optionNameAddr            = "addr"
	optionNamePath            = "path"
	optionNameEvent           = "event"
	optionNameVerbosity       = "verbosity"
	optionNameReadLimit       = "read-limit"
	optionNameShutdownTimeout = "shutdown-timeout"
)

func init() {
	cobra.EnableCommandSorting = false
}

type command struct {
	root    *cobra.Command
	config  *viper.Viper
	cfgFile string
	ctx     context.Context
}

type option func(*command)

func newCommand(opts ...option) (c *command, err error) {
	c = &command{
		root: &cobra.Command{
			Use:           "remotelog-collector",
			Short:         "Collect records sent by remotelog forwarders",
			SilenceErrors: true,
			SilenceUsage:  true,
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return c.initConfig()
			},
		},
	}

	for _, o := range opts {
		o(c)
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}

	c.initGlobalFlags()
	c.initStartCmd()
	c.initVersionCmd()

	return c, nil
}

func (c *command) Execute() (err error) {
	return c.root.Execute()
}

// Execute parses command line arguments and runs appropriate functions.
func Execute() (err error) {
	c, err := newCommand()
	if err != nil {
		return err
	}
	return c.Execute()
}

func (c *command) initGlobalFlags() {
	globalFlags := c.root.PersistentFlags()
	globalFlags.StringVar(&c.cfgFile, "config", "", "config file")
}

func (c *command) initConfig() (err error) {
	config := viper.New()
	if c.cfgFile != "" {
		config.SetConfigFile(c.cfgFile)
	}

	config.SetEnvPrefix("remotelog_collector")
	config.AutomaticEnv()
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if c.cfgFile != "" {
		if err := config.ReadInConfig(); err != nil {
			var e viper.ConfigFileNotFoundError
			if !errors.As(err, &e) {
				return err
			}
		}
	}
	c.config = config
	return nil
}
