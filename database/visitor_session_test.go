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
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/craigmalenga/valifi-batch-sub000/internal/apierror"
	"github.com/craigmalenga/valifi-batch-sub000/internal/cache"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionColumnNames = []string{
	"session_id", "visitor_id", "first_visit", "last_activity", "uk_hour", "uk_day_of_week", "uk_date",
	"attribution", "landing_page", "referrer", "device_type", "browser", "ip_address", "pages_viewed", "time_on_site",
	"form_started", "form_completed", "form_abandonment_stage", "lead_ids", "conversion_timestamp",
	"last_completed_step", "last_active_field", "total_interactions", "credit_check_initiated", "identity_verified",
	"otp_sent", "otp_verified", "signature_provided", "resume_token", "resume_link_sent", "journey", "profile",
	"created_at", "updated_at",
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func sessionRow(t *testing.T, now time.Time) []driver.Value {
	t.Helper()
	attribution, err := json.Marshal(model.Attribution{Source: "facebook", Medium: "paid_social", FBAdID: "ad-9"})
	require.NoError(t, err)
	journey, err := json.Marshal(model.Journey{LendersFoundCount: 3, CMCDetected: true})
	require.NoError(t, err)
	profile, err := json.Marshal(model.Profile{FirstName: "John", Mobile: "07700900123"})
	require.NoError(t, err)

	return []driver.Value{
		"sess-12345678", "visitor-1", now, now, 9, 0, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		attribution, "https://belmondpcp.co.uk/?utm_source=facebook", "https://facebook.com", "mobile", "Safari 17.1", "a1b2c3d4e5f60718", 2, 120,
		true, false, "", "{lead-1,lead-2}", nil,
		"step2", "email", 7, true, false,
		true, true, false, "resume-abc", false, journey, profile,
		now, now,
	}
}

func TestGetVisitorSession_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT session_id, visitor_id, first_visit").
		WithArgs("sess-12345678").
		WillReturnRows(sqlmock.NewRows(sessionColumnNames).AddRow(sessionRow(t, now)...))

	session, err := ds.GetVisitorSession(context.Background(), "sess-12345678")
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", session.VisitorID)
	assert.Equal(t, "2025-03-03", session.UKDate)
	assert.Equal(t, "facebook", session.Attribution.Source)
	assert.Equal(t, "ad-9", session.Attribution.FBAdID)
	assert.Equal(t, []string{"lead-1", "lead-2"}, session.LeadIDs)
	assert.Nil(t, session.ConversionTimestamp)
	assert.Equal(t, 3, session.Journey.LendersFoundCount)
	assert.True(t, session.Journey.CMCDetected)
	assert.Equal(t, "07700900123", session.Profile.Mobile)
	assert.Equal(t, "resume-abc", session.ResumeToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVisitorSession_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT session_id, visitor_id").
		WithArgs("missing-session").
		WillReturnError(sql.ErrNoRows)

	_, err = ds.GetVisitorSession(context.Background(), "missing-session")
	require.Error(t, err)
	assert.True(t, apierror.IsNotFound(err))
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestGetVisitorSession_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT session_id").
		WithArgs("sess-12345678").
		WillReturnError(errors.New("connection refused"))

	_, err = ds.GetVisitorSession(context.Background(), "sess-12345678")
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInternalServer, err.(apierror.APIError).Code)
}

func TestSaveVisitorSession_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)
	session := model.NewVisitorSession("sess-12345678", "visitor-1", now)
	session.LeadIDs = []string{"lead-1"}

	mock.ExpectExec(`INSERT INTO visitor_sessions .* ON CONFLICT \(session_id\) DO UPDATE`).
		WithArgs(anyArgs(34)...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, ds.SaveVisitorSession(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveVisitorSession_Failure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}
	session := model.NewVisitorSession("sess-12345678", "", time.Now())

	mock.ExpectExec("INSERT INTO visitor_sessions").
		WithArgs(anyArgs(34)...).
		WillReturnError(errors.New("disk full"))

	err = ds.SaveVisitorSession(context.Background(), session)
	require.Error(t, err)
	assert.Equal(t, apierror.ErrInternalServer, err.(apierror.APIError).Code)
}

func TestVisitorSession_ReadThroughCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ds := Datasource{Conn: db, Cache: cache.New(client)}
	now := time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT session_id").
		WithArgs("sess-12345678").
		WillReturnRows(sqlmock.NewRows(sessionColumnNames).AddRow(sessionRow(t, now)...))

	first, err := ds.GetVisitorSession(context.Background(), "sess-12345678")
	require.NoError(t, err)
	assert.True(t, mr.Exists("visitor_session:sess-12345678"))

	// served from cache, no second query expected
	second, err := ds.GetVisitorSession(context.Background(), "sess-12345678")
	require.NoError(t, err)
	assert.Equal(t, first.VisitorID, second.VisitorID)
	assert.Equal(t, first.LeadIDs, second.LeadIDs)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.NoError(t, ds.InvalidateVisitorSession(context.Background(), "sess-12345678"))
	assert.False(t, mr.Exists("visitor_session:sess-12345678"))
}
