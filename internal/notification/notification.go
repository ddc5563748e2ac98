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

package notification

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/internal/request"
)

// WebhookSender delivers an event to the configured outbound webhook.
type WebhookSender func(event string, payload interface{}) error

var (
	webhookMu     sync.RWMutex
	webhookSender WebhookSender
)

// RegisterWebhookSender installs the sender NotifyError uses for system.error events.
func RegisterWebhookSender(sender WebhookSender) {
	webhookMu.Lock()
	defer webhookMu.Unlock()
	webhookSender = sender
}

func currentWebhookSender() WebhookSender {
	webhookMu.RLock()
	defer webhookMu.RUnlock()
	return webhookSender
}

func slackMessage(err error, project string, at time.Time) map[string]interface{} {
	field := func(text string) map[string]interface{} {
		return map[string]interface{}{
			"type":   "section",
			"fields": []map[string]string{{"type": "mrkdwn", "text": text}},
		}
	}
	return map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{
				"type": "header",
				"text": map[string]interface{}{
					"type":  "plain_text",
					"text":  fmt.Sprintf("Error From %s", project),
					"emoji": true,
				},
			},
			field(fmt.Sprintf("*Error:*\n%v", err)),
			field(fmt.Sprintf("*Time:*\n%v", at.Format(time.RFC822))),
		},
	}
}

// SlackNotification posts err to the Slack webhook in cnf.
func SlackNotification(ctx context.Context, cnf *config.Configuration, err error) error {
	req, reqErr := request.NewJSONRequest(ctx, http.MethodPost, cnf.Notification.Slack.WebhookUrl, slackMessage(err, cnf.ProjectName, time.Now()))
	if reqErr != nil {
		return reqErr
	}
	resp, _, sendErr := request.Send(nil, req)
	if sendErr != nil {
		return sendErr
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyError logs systemError and forwards it to Slack and the outbound webhook when they are
// configured. It does not block.
func NotifyError(systemError error) {
	go func(systemError error) {
		logrus.Error(systemError)

		if sender := currentWebhookSender(); sender != nil {
			payload := map[string]string{"error": systemError.Error(), "time": time.Now().UTC().Format(time.RFC3339)}
			if err := sender("system.error", payload); err != nil {
				logrus.WithError(err).Warn("failed to send error webhook")
			}
		}

		cnf, err := config.Fetch()
		if err != nil {
			logrus.Warn(err)
			return
		}
		if cnf.Notification.Slack.WebhookUrl == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := SlackNotification(ctx, cnf, systemError); err != nil {
			logrus.WithError(err).Warn("failed to send slack notification")
		}
	}(systemError)
}
