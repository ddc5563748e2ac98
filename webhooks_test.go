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
	"net/http"
	"testing"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/hibiken/asynq"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookURL = "http://hooks.test/valifi"

func webhookTask(t *testing.T, hook NewWebhook) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(hook)
	require.NoError(t, err)
	return asynq.NewTask(TaskWebhook, payload)
}

func mockWebhookConfig() {
	config.MockConfig(&config.Configuration{
		Notification: config.Notification{
			Webhook: config.WebhookConfig{
				Url:     testWebhookURL,
				Headers: map[string]string{"X-Valifi-Key": "secret"},
			},
		},
	})
}

func TestProcessWebhook(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	mockWebhookConfig()

	var received NewWebhook
	httpmock.RegisterResponder(http.MethodPost, testWebhookURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "secret", req.Header.Get("X-Valifi-Key"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			if err := json.NewDecoder(req.Body).Decode(&received); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
		})

	task := webhookTask(t, NewWebhook{Event: EventConversion, Payload: ConversionPayload{SessionID: "sess-1", LeadIDs: []string{"lead-1"}}})
	require.NoError(t, ProcessWebhook(context.Background(), task))

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, EventConversion, received.Event)
	data, ok := received.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sess-1", data["session_id"])
}

func TestProcessWebhook_ServerErrorIsRetried(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	mockWebhookConfig()

	httpmock.RegisterResponder(http.MethodPost, testWebhookURL, httpmock.NewStringResponder(http.StatusInternalServerError, "down"))

	err := ProcessWebhook(context.Background(), webhookTask(t, NewWebhook{Event: EventConversion}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Contains(t, err.Error(), "status 500")
}

func TestProcessWebhook_WithoutURLIsNoop(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	config.MockConfig(&config.Configuration{})

	require.NoError(t, ProcessWebhook(context.Background(), webhookTask(t, NewWebhook{Event: EventConversion})))
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestProcessWebhook_BadPayload(t *testing.T) {
	mockWebhookConfig()

	err := ProcessWebhook(context.Background(), asynq.NewTask(TaskWebhook, []byte("nope")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestSendWebhook_NoURLSkipsQueue(t *testing.T) {
	svc := newTestService(t, nil)

	require.NoError(t, svc.SendWebhook(context.Background(), NewWebhook{Event: EventConversion}))
	assert.Empty(t, pendingTasks(t, svc.mr, config.DEFAULT_CONVERSION_QUEUE))
}

func TestWebhookSender_QueuesEvent(t *testing.T) {
	svc := newTestService(t, func(c *config.Configuration) {
		c.Notification.Webhook.Url = testWebhookURL
	})

	require.NoError(t, svc.WebhookSender()("system.error", map[string]string{"error": "boom"}))
	assert.Len(t, pendingTasks(t, svc.mr, config.DEFAULT_CONVERSION_QUEUE), 1)
}
