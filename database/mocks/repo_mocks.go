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

package mocks

import (
	"context"

	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) GetVisitorSession(ctx context.Context, sessionID string) (*model.VisitorSession, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*model.VisitorSession)
	return session, args.Error(1)
}

func (m *MockDataSource) SaveVisitorSession(ctx context.Context, session *model.VisitorSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockDataSource) InvalidateVisitorSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
