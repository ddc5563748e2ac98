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
	"context"
	"fmt"
	"log"

	valifi "github.com/craigmalenga/valifi-batch-sub000"
	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/internal/notification"
	redis_db "github.com/craigmalenga/valifi-batch-sub000/internal/redis-db"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// initializeQueues weights lead uploads above conversion webhooks.
func initializeQueues(cfg *config.Configuration) map[string]int {
	return map[string]int{
		cfg.Queue.LeadQueue:       3,
		cfg.Queue.ConversionQueue: 1,
	}
}

// initializeWorkerServer builds the asynq server. Failed lead uploads are
// rescheduled with valifi.RetryDelay and every failed attempt goes through
// reportTaskError.
func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.AsynqOpt(conf.Redis)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		redisOption,
		asynq.Config{
			Concurrency:    conf.Queue.NumberOfWorkers,
			Queues:         queues,
			RetryDelayFunc: valifi.RetryDelay(conf.Queue),
			ErrorHandler:   asynq.ErrorHandlerFunc(reportTaskError),
			Logger:         logrus.StandardLogger(),
		},
	), nil
}

// reportTaskError logs every failed attempt. Lead uploads report their own
// final failure, webhooks that run out of retries are reported here.
func reportTaskError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	logrus.WithError(err).WithFields(logrus.Fields{
		"task":    task.Type(),
		"attempt": retried + 1,
	}).Warn("task failed")

	if task.Type() == valifi.TaskWebhook && retried >= maxRetry {
		notification.NotifyError(fmt.Errorf("webhook delivery failed after %d attempts: %w", retried+1, err))
	}
}

// initializeTaskHandlers registers the lead upload and webhook delivery handlers on mux.
func initializeTaskHandlers(v *valifiInstance, mux *asynq.ServeMux) {
	mux.HandleFunc(valifi.TaskProcessLead, v.valifi.ProcessLead)
	mux.HandleFunc(valifi.TaskWebhook, valifi.ProcessWebhook)
}

// workerCommands defines the "workers" command that processes lead uploads and conversion webhooks.
func workerCommands(v *valifiInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start valifi workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			defer closeInstance(v)

			shutdown, err := initializeObservability(ctx, v.cnf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			srv, err := initializeWorkerServer(v.cnf, initializeQueues(v.cnf))
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(v, mux)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
