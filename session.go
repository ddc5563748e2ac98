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
	"errors"
	"fmt"

	"github.com/craigmalenga/valifi-batch-sub000/internal/apierror"
	redlock "github.com/craigmalenga/valifi-batch-sub000/internal/lock"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// sessionLockKey is the Redis key that guards one visitor session.
func sessionLockKey(sessionID string) string {
	return fmt.Sprintf("visitor-session-lock:%s", sessionID)
}

// sessionUpdate mutates a loaded session. isNew is true when the session did
// not exist and was created for this call.
type sessionUpdate func(session *model.VisitorSession, isNew bool)

// updateSession serializes read-modify-write cycles on one visitor session
// across all receiver instances. When create is false a missing session is
// reported as (nil, nil).
func (v *Valifi) updateSession(ctx context.Context, sessionID, visitorID string, create bool, apply sessionUpdate) (*model.VisitorSession, error) {
	timeout := v.cfg.Tracking.SessionLockTimeout.Duration
	locker := redlock.NewLocker(v.redis, sessionLockKey(sessionID), uuid.NewString())
	if err := locker.WaitLock(ctx, timeout, timeout); err != nil {
		if errors.Is(err, redlock.ErrLockTimeout) {
			return nil, apierror.NewAPIError(apierror.ErrLocked, "visitor session is busy, retry shortly", err)
		}
		return nil, err
	}
	defer func() {
		if err := locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			logrus.WithError(err).WithField("session_id", sessionID).Warn("failed to release visitor session lock")
		}
	}()

	now := v.now()
	session, err := v.datasource.GetVisitorSession(ctx, sessionID)
	isNew := false
	switch {
	case apierror.IsNotFound(err):
		if !create {
			return nil, nil
		}
		session = model.NewVisitorSession(sessionID, visitorID, now)
		isNew = true
	case err != nil:
		return nil, err
	}

	apply(session, isNew)

	if err := v.datasource.SaveVisitorSession(ctx, session); err != nil {
		if invErr := v.datasource.InvalidateVisitorSession(ctx, sessionID); invErr != nil {
			logrus.WithError(invErr).WithField("session_id", sessionID).Warn("failed to invalidate cached visitor session")
		}
		return nil, err
	}

	if isNew {
		logrus.WithField("session_id", sessionID).Info("created visitor session")
	}
	return session, nil
}
