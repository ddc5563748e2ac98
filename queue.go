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

package valifi

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/craigmalenga/valifi-batch-sub000/config"
	redis_db "github.com/craigmalenga/valifi-batch-sub000/internal/redis-db"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Task type names handled by the worker mux.
const (
	TaskProcessLead = "lead:upload"
	TaskWebhook     = "webhook:deliver"
)

// leadUploadTimeout bounds a single upload attempt.
const leadUploadTimeout = 10 * time.Minute

// Queue wraps the asynq client used to hand work to the workers.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
	cfg       config.QueueConfig
}

// LeadTask is the payload of a lead upload task.
type LeadTask struct {
	Lead       model.Lead `json:"lead"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
//
// Parameters:
// - conf *config.Configuration: The configuration holding the Redis connection and queue names.
//
// Returns:
// - *Queue: A pointer to the newly created Queue instance.
// - error: An error if the Redis URL could not be parsed.
func NewQueue(conf *config.Configuration) (*Queue, error) {
	opt, err := redis_db.AsynqOpt(conf.Redis)
	if err != nil {
		return nil, err
	}
	return &Queue{
		Client:    asynq.NewClient(opt),
		Inspector: asynq.NewInspector(opt),
		cfg:       conf.Queue,
	}, nil
}

// Close releases the client and inspector connections.
func (q *Queue) Close() error {
	return errors.Join(q.Client.Close(), q.Inspector.Close())
}

// EnqueueLead schedules the upload of a signed claim summary on the lead queue.
// The task is retried up to LeadMaxRetries times with the schedule from RetryDelay.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - lead model.Lead: The claim summary to upload.
// - now time.Time: The time recorded as the moment the lead was queued.
//
// Returns:
// - *asynq.TaskInfo: Information about the enqueued task.
// - error: An error if the task could not be enqueued.
func (q *Queue) EnqueueLead(ctx context.Context, lead model.Lead, now time.Time) (*asynq.TaskInfo, error) {
	ctx, span := tracer.Start(ctx, "Enqueueing lead upload")
	defer span.End()

	payload, err := json.Marshal(LeadTask{Lead: lead, EnqueuedAt: now.UTC()})
	if err != nil {
		return nil, err
	}

	task := asynq.NewTask(TaskProcessLead, payload,
		asynq.Queue(q.cfg.LeadQueue),
		asynq.MaxRetry(q.cfg.LeadMaxRetries),
		asynq.Timeout(leadUploadTimeout),
	)
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"task_id":    info.ID,
		"session_id": lead.SessionID,
		"queue":      info.Queue,
	}).Info("lead upload enqueued")
	return info, nil
}

// EnqueueWebhook schedules delivery of an outbound webhook on the conversion queue.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - hook NewWebhook: The event and payload to deliver.
//
// Returns:
// - error: An error if the payload could not be encoded or the task could not be enqueued.
func (q *Queue) EnqueueWebhook(ctx context.Context, hook NewWebhook) error {
	payload, err := json.Marshal(hook)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskWebhook, payload, asynq.Queue(q.cfg.ConversionQueue), asynq.MaxRetry(5))
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"task_id": info.ID, "event": hook.Event}).Debug("webhook enqueued")
	return nil
}

// RetryDelay returns the worker retry schedule. Lead uploads back off
// exponentially from LeadInitialInterval, doubling each attempt with jitter,
// capped at LeadMaxInterval. Other tasks use the asynq default.
//
// Parameters:
// - cfg config.QueueConfig: The queue configuration holding the lead intervals.
//
// Returns:
// - asynq.RetryDelayFunc: A function asynq calls with the retry count, the error and the task.
func RetryDelay(cfg config.QueueConfig) asynq.RetryDelayFunc {
	return func(n int, err error, task *asynq.Task) time.Duration {
		if task.Type() != TaskProcessLead {
			return asynq.DefaultRetryDelayFunc(n, err, task)
		}
		return leadBackoff(cfg, n)
	}
}

// leadBackoff returns the delay before retry number retried, counting from zero.
// The jittered value never exceeds LeadMaxInterval.
func leadBackoff(cfg config.QueueConfig, retried int) time.Duration {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(cfg.LeadInitialInterval.Duration),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0.25),
		backoff.WithMaxInterval(cfg.LeadMaxInterval.Duration),
		backoff.WithMaxElapsedTime(0),
	)
	delay := b.NextBackOff()
	for i := 0; i < retried; i++ {
		delay = b.NextBackOff()
	}
	return min(delay, cfg.LeadMaxInterval.Duration)
}
