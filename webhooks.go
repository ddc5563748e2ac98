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
	"fmt"
	"net/http"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/internal/notification"
	"github.com/craigmalenga/valifi-batch-sub000/internal/request"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// EventConversion is the webhook event sent when a visitor converts.
const EventConversion = "visitor.converted"

// NewWebhook is the envelope posted to the configured webhook URL.
type NewWebhook struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"data"`
}

// SendWebhook queues hook for delivery. It is a no-op when no webhook URL is
// configured.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - hook NewWebhook: The webhook event and payload.
//
// Returns:
// - error: An error if the webhook could not be queued.
func (v *Valifi) SendWebhook(ctx context.Context, hook NewWebhook) error {
	if v.cfg.Notification.Webhook.Url == "" {
		return nil
	}
	return v.queue.EnqueueWebhook(ctx, hook)
}

// WebhookSender adapts SendWebhook for notification.RegisterWebhookSender.
func (v *Valifi) WebhookSender() notification.WebhookSender {
	return func(event string, payload interface{}) error {
		return v.SendWebhook(context.Background(), NewWebhook{Event: event, Payload: payload})
	}
}

// ProcessWebhook delivers a queued webhook. Non-2xx answers are returned as
// errors so asynq retries them.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - task *asynq.Task: The task carrying the encoded NewWebhook.
//
// Returns:
// - error: asynq.SkipRetry wrapped around a decode failure, or the delivery error.
func ProcessWebhook(ctx context.Context, task *asynq.Task) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}
	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	var hook NewWebhook
	if err := json.Unmarshal(task.Payload(), &hook); err != nil {
		return fmt.Errorf("decode webhook payload: %v: %w", err, asynq.SkipRetry)
	}

	req, err := request.NewJSONRequest(ctx, http.MethodPost, conf.Notification.Webhook.Url, hook)
	if err != nil {
		return err
	}
	for key, value := range conf.Notification.Webhook.Headers {
		req.Header.Set(key, value)
	}

	resp, _, err := request.Send(nil, req)
	if err != nil {
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook %s returned status %d", hook.Event, resp.StatusCode)
	}

	logrus.WithField("event", hook.Event).Info("webhook delivered")
	return nil
}
