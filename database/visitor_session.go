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

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/internal/apierror"
	"github.com/craigmalenga/valifi-batch-sub000/internal/cache"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

const defaultSessionCacheTTL = 10 * time.Minute

const visitorSessionColumns = `session_id, visitor_id, first_visit, last_activity, uk_hour, uk_day_of_week, uk_date,
	attribution, landing_page, referrer, device_type, browser, ip_address, pages_viewed, time_on_site,
	form_started, form_completed, form_abandonment_stage, lead_ids, conversion_timestamp,
	last_completed_step, last_active_field, total_interactions, credit_check_initiated, identity_verified,
	otp_sent, otp_verified, signature_provided, resume_token, resume_link_sent, journey, profile,
	created_at, updated_at`

// visitorSessionCacheKey is the cache key of one visitor session.
func visitorSessionCacheKey(sessionID string) string {
	return fmt.Sprintf("visitor_session:%s", sessionID)
}

// GetVisitorSession loads a session, consulting the cache first.
func (d Datasource) GetVisitorSession(ctx context.Context, sessionID string) (*model.VisitorSession, error) {
	ctx, span := otel.Tracer("visitor sessions").Start(ctx, "Fetching visitor session")
	defer span.End()

	if d.Cache != nil {
		var cached model.VisitorSession
		err := d.Cache.Get(ctx, visitorSessionCacheKey(sessionID), &cached)
		if err == nil && cached.SessionID != "" {
			return &cached, nil
		}
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			logrus.WithError(err).WithField("session_id", sessionID).Warn("visitor session cache read failed")
		}
	}

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+visitorSessionColumns+`
		FROM visitor_sessions
		WHERE session_id = $1
	`, sessionID)

	session, err := scanVisitorSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("visitor session %s not found", sessionID), nil)
		}
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to load visitor session", err)
	}

	d.cacheVisitorSession(ctx, session)
	return session, nil
}

// SaveVisitorSession inserts the session or replaces every mutable column of
// the stored row.
func (d Datasource) SaveVisitorSession(ctx context.Context, session *model.VisitorSession) error {
	ctx, span := otel.Tracer("visitor sessions").Start(ctx, "Saving visitor session")
	defer span.End()

	attribution, err := json.Marshal(session.Attribution)
	if err != nil {
		return pkgerrors.Wrap(err, "encode attribution")
	}
	journey, err := json.Marshal(session.Journey)
	if err != nil {
		return pkgerrors.Wrap(err, "encode journey")
	}
	profile, err := json.Marshal(session.Profile)
	if err != nil {
		return pkgerrors.Wrap(err, "encode profile")
	}

	var ukDate interface{}
	if session.UKDate != "" {
		ukDate = session.UKDate
	}

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO visitor_sessions (`+visitorSessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34)
		ON CONFLICT (session_id) DO UPDATE SET
			visitor_id = EXCLUDED.visitor_id,
			last_activity = EXCLUDED.last_activity,
			attribution = EXCLUDED.attribution,
			landing_page = EXCLUDED.landing_page,
			referrer = EXCLUDED.referrer,
			device_type = EXCLUDED.device_type,
			browser = EXCLUDED.browser,
			ip_address = EXCLUDED.ip_address,
			pages_viewed = EXCLUDED.pages_viewed,
			time_on_site = EXCLUDED.time_on_site,
			form_started = EXCLUDED.form_started,
			form_completed = EXCLUDED.form_completed,
			form_abandonment_stage = EXCLUDED.form_abandonment_stage,
			lead_ids = EXCLUDED.lead_ids,
			conversion_timestamp = EXCLUDED.conversion_timestamp,
			last_completed_step = EXCLUDED.last_completed_step,
			last_active_field = EXCLUDED.last_active_field,
			total_interactions = EXCLUDED.total_interactions,
			credit_check_initiated = EXCLUDED.credit_check_initiated,
			identity_verified = EXCLUDED.identity_verified,
			otp_sent = EXCLUDED.otp_sent,
			otp_verified = EXCLUDED.otp_verified,
			signature_provided = EXCLUDED.signature_provided,
			resume_token = EXCLUDED.resume_token,
			resume_link_sent = EXCLUDED.resume_link_sent,
			journey = EXCLUDED.journey,
			profile = EXCLUDED.profile,
			updated_at = EXCLUDED.updated_at
	`,
		session.SessionID, session.VisitorID, session.FirstVisit, session.LastActivity,
		session.UKHour, session.UKDayOfWeek, ukDate,
		attribution, session.LandingPage, session.Referrer, session.DeviceType, session.Browser, session.IPAddress,
		session.PagesViewed, session.TimeOnSite,
		session.FormStarted, session.FormCompleted, session.FormAbandonmentStage,
		pq.Array(session.LeadIDs), session.ConversionTimestamp,
		session.LastCompletedStep, session.LastActiveField, session.TotalInteractions,
		session.CreditCheckInitiated, session.IdentityVerified,
		session.OTPSent, session.OTPVerified, session.SignatureProvided,
		session.ResumeToken, session.ResumeLinkSent, journey, profile,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to save visitor session", err)
	}

	d.cacheVisitorSession(ctx, session)
	return nil
}

// InvalidateVisitorSession drops the cached copy of a session.
func (d Datasource) InvalidateVisitorSession(ctx context.Context, sessionID string) error {
	if d.Cache == nil {
		return nil
	}
	return d.Cache.Delete(ctx, visitorSessionCacheKey(sessionID))
}

// cacheVisitorSession stores session in the cache. A cache failure is logged and ignored.
func (d Datasource) cacheVisitorSession(ctx context.Context, session *model.VisitorSession) {
	if d.Cache == nil {
		return
	}
	ttl := d.CacheTTL
	if ttl <= 0 {
		ttl = defaultSessionCacheTTL
	}
	if err := d.Cache.Set(ctx, visitorSessionCacheKey(session.SessionID), session, ttl); err != nil {
		logrus.WithError(err).WithField("session_id", session.SessionID).Warn("visitor session cache write failed")
	}
}

func scanVisitorSession(row *sql.Row) (*model.VisitorSession, error) {
	var (
		s                             model.VisitorSession
		ukDate                        sql.NullTime
		attribution, journey, profile []byte
	)
	err := row.Scan(
		&s.SessionID, &s.VisitorID, &s.FirstVisit, &s.LastActivity, &s.UKHour, &s.UKDayOfWeek, &ukDate,
		&attribution, &s.LandingPage, &s.Referrer, &s.DeviceType, &s.Browser, &s.IPAddress, &s.PagesViewed, &s.TimeOnSite,
		&s.FormStarted, &s.FormCompleted, &s.FormAbandonmentStage, pq.Array(&s.LeadIDs), &s.ConversionTimestamp,
		&s.LastCompletedStep, &s.LastActiveField, &s.TotalInteractions, &s.CreditCheckInitiated, &s.IdentityVerified,
		&s.OTPSent, &s.OTPVerified, &s.SignatureProvided, &s.ResumeToken, &s.ResumeLinkSent, &journey, &profile,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ukDate.Valid {
		s.UKDate = ukDate.Time.Format("2006-01-02")
	}
	if err := unmarshalColumn(attribution, &s.Attribution); err != nil {
		return nil, pkgerrors.Wrap(err, "decode attribution")
	}
	if err := unmarshalColumn(journey, &s.Journey); err != nil {
		return nil, pkgerrors.Wrap(err, "decode journey")
	}
	if err := unmarshalColumn(profile, &s.Profile); err != nil {
		return nil, pkgerrors.Wrap(err, "decode profile")
	}
	return &s, nil
}

// unmarshalColumn decodes a JSONB column. NULL leaves v unchanged.
func unmarshalColumn(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
