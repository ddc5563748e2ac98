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
	"testing"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	"github.com/craigmalenga/valifi-batch-sub000/internal/notification"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadTask(t *testing.T, lead model.Lead) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(LeadTask{Lead: lead, EnqueuedAt: testNow})
	require.NoError(t, err)
	return asynq.NewTask(TaskProcessLead, payload)
}

func TestProcessLead_RecordsConversion(t *testing.T) {
	svc := newTestService(t, nil)
	svc.uploader.result = &model.LeadResult{Success: true, LeadIDs: []string{"lead-1", "lead-2"}}
	svc.store.put(model.NewVisitorSession("sess-12345678", "visitor-1", testNow.Add(-10*time.Minute)))

	err := svc.ProcessLead(context.Background(), leadTask(t, model.Lead{SessionID: "sess-12345678", FirstName: "John"}))
	require.NoError(t, err)

	require.Len(t, svc.uploader.leads, 1)
	assert.Equal(t, "John", svc.uploader.leads[0].FirstName)

	stored := svc.store.get(t, "sess-12345678")
	assert.True(t, stored.FormCompleted)
	assert.Equal(t, []string{"lead-1", "lead-2"}, stored.LeadIDs)
	assert.Equal(t, []string{"conversion"}, svc.analytics.events())
}

func TestProcessLead_WithoutSessionSkipsConversion(t *testing.T) {
	svc := newTestService(t, nil)
	svc.uploader.result = &model.LeadResult{Success: true, LeadIDs: []string{"lead-1"}}

	require.NoError(t, svc.ProcessLead(context.Background(), leadTask(t, model.Lead{FirstName: "John"})))
	assert.Zero(t, svc.store.saves)
	assert.Empty(t, svc.analytics.events())
}

func TestProcessLead_RejectionNotifiesOnFinalAttempt(t *testing.T) {
	defer notification.RegisterWebhookSender(nil)
	svc := newTestService(t, nil)
	svc.uploader.result = &model.LeadResult{Success: false, Error: "Duplicate lead"}

	events := make(chan string, 1)
	notification.RegisterWebhookSender(func(event string, payload interface{}) error {
		events <- event
		return nil
	})

	err := svc.ProcessLead(context.Background(), leadTask(t, model.Lead{SessionID: "sess-12345678"}))
	require.Error(t, err)

	var gwErr *gateway.Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, gateway.PathUploadSummary, gwErr.Path)
	assert.Contains(t, err.Error(), "Duplicate lead")

	select {
	case event := <-events:
		assert.Equal(t, "system.error", event)
	case <-time.After(2 * time.Second):
		t.Fatal("final failure was not reported")
	}
	assert.Zero(t, svc.store.saves)
}

func TestProcessLead_UploadError(t *testing.T) {
	svc := newTestService(t, nil)
	svc.uploader.result = nil
	svc.uploader.err = errors.New("connection refused")

	err := svc.ProcessLead(context.Background(), leadTask(t, model.Lead{SessionID: "sess-12345678"}))
	assert.EqualError(t, err, "connection refused")
}

func TestProcessLead_BadPayloadSkipsRetry(t *testing.T) {
	svc := newTestService(t, nil)

	err := svc.ProcessLead(context.Background(), asynq.NewTask(TaskProcessLead, []byte("{not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, svc.uploader.leads)
}
