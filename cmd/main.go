/*
Copyright 2024 Blnk Finance Authors.

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

package main

import (
	"fmt"
	"log"
	"os"

	valifi "github.com/craigmalenga/valifi-batch-sub000"
	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/database"
	"github.com/craigmalenga/valifi-batch-sub000/internal/notification"
	"github.com/posthog/posthog-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Valifi represents the CLI application, encapsulating the root Cobra command.
type Valifi struct {
	cmd *cobra.Command
}

// valifiInstance holds the service and its configuration for the running command.
type valifiInstance struct {
	valifi    *valifi.Valifi
	cnf       *config.Configuration
	analytics posthog.Client
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func loadConfig(configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(*configFile); err != nil {
			log.Fatal("error loading config ", err)
		}
		return nil
	}
}

// preRun loads the configuration and builds the service before running any command.
func preRun(app *valifiInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(configFile)(cmd, args); err != nil {
			return err
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		analytics := initializePostHog(cnf)
		v, err := setupValifi(cnf, analytics)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}
		notification.RegisterWebhookSender(v.WebhookSender())

		app.valifi = v
		app.cnf = cnf
		app.analytics = analytics
		return nil
	}
}

// setupValifi connects the data source and creates the service.
func setupValifi(cfg *config.Configuration, analytics posthog.Client) (*valifi.Valifi, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	var opts []valifi.Option
	if analytics != nil {
		opts = append(opts, valifi.WithAnalytics(analytics))
	}
	v, err := valifi.NewValifi(db, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating valifi: %v", err)
	}
	return v, nil
}

// NewCLI creates the command-line interface with the server, worker and migration commands.
func NewCLI() *Valifi {
	var configFile string
	v := &valifiInstance{}

	var rootCmd = &cobra.Command{
		Use:   "valifi",
		Short: "Claim onboarding tracking receiver and lead workers",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./valifi.json", "Configuration file for valifi")
	rootCmd.PersistentPreRunE = preRun(v, &configFile)

	rootCmd.AddCommand(serverCommands(v))
	rootCmd.AddCommand(workerCommands(v))
	rootCmd.AddCommand(migrateCommands(&configFile))
	rootCmd.AddCommand(configCommands(&configFile))

	return &Valifi{cmd: rootCmd}
}

func (w Valifi) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
