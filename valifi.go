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
	"embed"
	"errors"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/database"
	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	redis_db "github.com/craigmalenga/valifi-batch-sub000/internal/redis-db"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/posthog/posthog-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// tracer is the OpenTelemetry tracer for service spans.
var tracer = otel.Tracer("valifi")

// LeadUploader submits a finished claim summary to the backend.
type LeadUploader interface {
	UploadSummary(ctx context.Context, lead model.Lead) (*model.LeadResult, error)
}

// Analytics receives product analytics captures. posthog.Client satisfies it.
type Analytics interface {
	Enqueue(msg posthog.Message) error
}

// Valifi is the server side of the onboarding funnel: it folds tracking
// calls into visitor sessions and runs the lead and webhook queues.
type Valifi struct {
	cfg        *config.Configuration
	datasource database.IDataSource
	redis      redis.UniversalClient
	queue      *Queue
	uploader   LeadUploader
	analytics  Analytics
	now        func() time.Time
}

// Option configures a Valifi instance.
type Option func(*Valifi)

// WithClock overrides the time source used for session timestamps and UK time fields.
func WithClock(now func() time.Time) Option {
	return func(v *Valifi) { v.now = now }
}

// WithAnalytics sets the client that receives conversion and critical event captures.
func WithAnalytics(a Analytics) Option {
	return func(v *Valifi) { v.analytics = a }
}

// WithUploader sets the backend client the lead worker uploads claims with.
func WithUploader(u LeadUploader) Option {
	return func(v *Valifi) { v.uploader = u }
}

// NewValifi wires the service from the loaded configuration.
// It opens the Redis client used for the session locks and the task queue.
//
// Parameters:
// - db database.IDataSource: The store visitor sessions are read from and written to.
// - opts ...Option: Optional overrides for the clock, analytics and uploader.
//
// Returns:
// - *Valifi: The configured service.
// - error: An error if the configuration could not be fetched or the Redis clients could not be created.
func NewValifi(db database.IDataSource, opts ...Option) (*Valifi, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	rdb, err := redis_db.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	queue, err := NewQueue(cfg)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	v := &Valifi{
		cfg:        cfg,
		datasource: db,
		redis:      rdb.Client(),
		queue:      queue,
		uploader:   gateway.NewClient(cfg.Gateway.BaseUrl, gateway.WithTimeout(cfg.Gateway.Timeout.Duration)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Queue returns the task queue the service enqueues on.
func (v *Valifi) Queue() *Queue {
	return v.queue
}

// Close releases the queue and Redis connections.
func (v *Valifi) Close() error {
	return errors.Join(v.queue.Close(), v.redis.Close())
}
