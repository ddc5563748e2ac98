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

	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	"github.com/craigmalenga/valifi-batch-sub000/internal/notification"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// SubmitLead queues a signed claim summary for upload and returns the task id.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - lead model.Lead: The claim summary to upload.
//
// Returns:
// - string: The ID of the queued task.
// - error: An error if the lead could not be queued.
func (v *Valifi) SubmitLead(ctx context.Context, lead model.Lead) (string, error) {
	info, err := v.queue.EnqueueLead(ctx, lead, v.now())
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// ProcessLead uploads a queued lead. A rejected or failed upload is returned
// so asynq retries it; the final failure is also reported through
// notification.NotifyError. A successful upload records the conversion on the
// originating session.
func (v *Valifi) ProcessLead(ctx context.Context, task *asynq.Task) error {
	ctx, span := tracer.Start(ctx, "Uploading lead")
	defer span.End()

	var payload LeadTask
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode lead task: %v: %w", err, asynq.SkipRetry)
	}
	lead := payload.Lead

	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	logger := logrus.WithFields(logrus.Fields{
		"session_id": lead.SessionID,
		"attempt":    retried + 1,
		"max":        maxRetry + 1,
	})
	logger.Info("uploading lead")

	result, err := v.uploader.UploadSummary(ctx, lead)
	if err == nil && !result.Success {
		err = &gateway.Error{Path: gateway.PathUploadSummary, Message: rejectionMessage(result)}
	}
	if err != nil {
		span.RecordError(err)
		if retried >= maxRetry {
			notification.NotifyError(fmt.Errorf("lead upload for session %s failed after %d attempts: %w", lead.SessionID, retried+1, err))
		} else {
			logger.WithError(err).Warn("lead upload failed, will retry")
		}
		return err
	}

	logger.WithField("lead_ids", result.LeadIDs).Info("lead uploaded")

	if lead.SessionID == "" || len(result.LeadIDs) == 0 {
		return nil
	}
	_, err = v.TrackConversion(ctx, model.Conversion{SessionID: lead.SessionID, LeadIDs: result.LeadIDs})
	if err != nil {
		// the upload itself succeeded; retrying would create duplicate leads
		logger.WithError(err).Error("failed to record conversion for uploaded lead")
	}
	return nil
}

// rejectionMessage returns the backend's reason for refusing a lead.
func rejectionMessage(result *model.LeadResult) string {
	if result.Error != "" {
		return result.Error
	}
	return "Submission failed"
}
