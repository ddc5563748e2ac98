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
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/internal/apierror"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

type memoryDataSource struct {
	mu       sync.Mutex
	sessions map[string]model.VisitorSession
	saves    int
}

func newMemoryDataSource() *memoryDataSource {
	return &memoryDataSource{sessions: make(map[string]model.VisitorSession)}
}

func (m *memoryDataSource) GetVisitorSession(_ context.Context, sessionID string) (*model.VisitorSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "visitor session not found", nil)
	}
	return &s, nil
}

func (m *memoryDataSource) SaveVisitorSession(_ context.Context, session *model.VisitorSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = *session
	m.saves++
	return nil
}

func (m *memoryDataSource) InvalidateVisitorSession(context.Context, string) error {
	return nil
}

func (m *memoryDataSource) put(s *model.VisitorSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = *s
}

func (m *memoryDataSource) get(t *testing.T, sessionID string) model.VisitorSession {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	require.True(t, ok, "session %s not stored", sessionID)
	return s
}

type recordingAnalytics struct {
	mu       sync.Mutex
	captures []posthog.Capture
}

func (r *recordingAnalytics) Enqueue(msg posthog.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := msg.(posthog.Capture); ok {
		r.captures = append(r.captures, c)
	}
	return nil
}

func (r *recordingAnalytics) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.captures))
	for _, c := range r.captures {
		out = append(out, c.Event)
	}
	return out
}

type fakeUploader struct {
	mu     sync.Mutex
	result *model.LeadResult
	err    error
	leads  []model.Lead
}

func (f *fakeUploader) UploadSummary(_ context.Context, lead model.Lead) (*model.LeadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return f.result, f.err
}

type testService struct {
	*Valifi
	mr        *miniredis.Miniredis
	store     *memoryDataSource
	analytics *recordingAnalytics
	uploader  *fakeUploader
}

func newTestService(t *testing.T, customize func(*config.Configuration)) *testService {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := &config.Configuration{
		ProjectName: "Valifi Test",
		Redis:       config.RedisConfig{Dns: mr.Addr()},
		DataSource:  config.DataSourceConfig{Dns: "postgres://localhost/valifi"},
	}
	if customize != nil {
		customize(cfg)
	}
	config.MockConfig(cfg)

	store := newMemoryDataSource()
	analytics := &recordingAnalytics{}
	uploader := &fakeUploader{result: &model.LeadResult{Success: true}}

	v, err := NewValifi(store,
		WithClock(func() time.Time { return testNow }),
		WithAnalytics(analytics),
		WithUploader(uploader),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })

	return &testService{Valifi: v, mr: mr, store: store, analytics: analytics, uploader: uploader}
}

func pendingTasks(t *testing.T, mr *miniredis.Miniredis, queue string) []string {
	t.Helper()
	key := "asynq:{" + queue + "}:pending"
	if !mr.Exists(key) {
		return nil
	}
	ids, err := mr.List(key)
	require.NoError(t, err)
	return ids
}
