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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	DEFAULT_MAX_PAYLOAD_BYTES = 10240
	DEFAULT_MAX_BULK_EVENTS   = 100
	DEFAULT_MAX_FIELD_LENGTH  = 255
	DEFAULT_LEAD_QUEUE        = "lead_processing"
	DEFAULT_CONVERSION_QUEUE  = "conversion_webhooks"
)

var ConfigStore atomic.Value

// DefaultAllowedOrigins are the domains the tracking receiver accepts when no
// allow-list is configured.
var DefaultAllowedOrigins = []string{
	"localhost",
	"127.0.0.1",
	"belmondpcp.co.uk",
	"www.belmondpcp.co.uk",
	"belmondpcp.com",
	"www.belmondpcp.com",
	"valifi-batch.up.railway.app",
}

type ServerConfig struct {
	SSL    bool   `json:"ssl" envconfig:"VALIFI_SERVER_SSL"`
	Domain string `json:"domain" envconfig:"VALIFI_SERVER_SSL_DOMAIN"`
	Email  string `json:"ssl_email" envconfig:"VALIFI_SERVER_SSL_EMAIL"`
	Port   string `json:"port" envconfig:"VALIFI_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"VALIFI_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"VALIFI_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"VALIFI_REDIS_SKIP_TLS_VERIFY"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"VALIFI_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"VALIFI_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"VALIFI_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type WebhookConfig struct {
	Url     string            `json:"url" envconfig:"VALIFI_WEBHOOK_URL"`
	Headers map[string]string `json:"headers"`
}

type Notification struct {
	Slack   SlackWebhook  `json:"slack"`
	Webhook WebhookConfig `json:"webhook"`
}

// TrackingConfig holds the client tracker timings and the receiver limits.
type TrackingConfig struct {
	AllowedOrigins       []string `json:"allowed_origins" envconfig:"VALIFI_TRACKING_ALLOWED_ORIGINS"`
	MaxPayloadBytes      int64    `json:"max_payload_bytes" envconfig:"VALIFI_TRACKING_MAX_PAYLOAD_BYTES"`
	MaxBulkEvents        int      `json:"max_bulk_events" envconfig:"VALIFI_TRACKING_MAX_BULK_EVENTS"`
	MaxFieldLength       int      `json:"max_field_length" envconfig:"VALIFI_TRACKING_MAX_FIELD_LENGTH"`
	FlushDelay           Duration `json:"flush_delay" envconfig:"VALIFI_TRACKING_FLUSH_DELAY"`
	InactivityThreshold  Duration `json:"inactivity_threshold" envconfig:"VALIFI_TRACKING_INACTIVITY_THRESHOLD"`
	ScrollDebounce       Duration `json:"scroll_debounce" envconfig:"VALIFI_TRACKING_SCROLL_DEBOUNCE"`
	VisitorCookieDays    int      `json:"visitor_cookie_days" envconfig:"VALIFI_TRACKING_VISITOR_COOKIE_DAYS"`
	SessionLockTimeout   Duration `json:"session_lock_timeout" envconfig:"VALIFI_TRACKING_SESSION_LOCK_TIMEOUT"`
	RequiresConsent      bool     `json:"tracking_requires_consent" envconfig:"VALIFI_TRACKING_REQUIRES_CONSENT"`
	ForwardCriticalToPH  bool     `json:"forward_critical_to_posthog" envconfig:"VALIFI_TRACKING_FORWARD_TO_POSTHOG"`
	SessionCacheDuration Duration `json:"session_cache_ttl" envconfig:"VALIFI_TRACKING_SESSION_CACHE_TTL"`
}

// GatewayConfig points the wizard at the onboarding backend.
type GatewayConfig struct {
	BaseUrl string   `json:"base_url" envconfig:"VALIFI_GATEWAY_BASE_URL"`
	Timeout Duration `json:"timeout" envconfig:"VALIFI_GATEWAY_TIMEOUT"`
}

type QueueConfig struct {
	LeadQueue           string   `json:"lead_queue" envconfig:"VALIFI_QUEUE_LEAD"`
	ConversionQueue     string   `json:"conversion_queue" envconfig:"VALIFI_QUEUE_CONVERSION"`
	NumberOfWorkers     int      `json:"number_of_workers" envconfig:"VALIFI_QUEUE_NUMBER_OF_WORKERS"`
	LeadMaxRetries      int      `json:"lead_max_retries" envconfig:"VALIFI_QUEUE_LEAD_MAX_RETRIES"`
	LeadInitialInterval Duration `json:"lead_initial_interval" envconfig:"VALIFI_QUEUE_LEAD_INITIAL_INTERVAL"`
	LeadMaxInterval     Duration `json:"lead_max_interval" envconfig:"VALIFI_QUEUE_LEAD_MAX_INTERVAL"`
}

type PostHogConfig struct {
	ApiKey   string `json:"api_key" envconfig:"VALIFI_POSTHOG_API_KEY"`
	Endpoint string `json:"endpoint" envconfig:"VALIFI_POSTHOG_ENDPOINT"`
}

type Configuration struct {
	ProjectName     string           `json:"project_name" envconfig:"VALIFI_PROJECT_NAME"`
	Server          ServerConfig     `json:"server"`
	DataSource      DataSourceConfig `json:"data_source"`
	Redis           RedisConfig      `json:"redis"`
	Notification    Notification     `json:"notification"`
	RateLimit       RateLimitConfig  `json:"rate_limit"`
	Tracking        TrackingConfig   `json:"tracking"`
	Gateway         GatewayConfig    `json:"gateway"`
	Queue           QueueConfig      `json:"queue"`
	PostHog         PostHogConfig    `json:"posthog"`
	EnableTelemetry bool             `json:"enable_telemetry" envconfig:"VALIFI_ENABLE_TELEMETRY"`
}

// Duration reads "5s" style strings from JSON and from the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if errNum := json.Unmarshal(b, &n); errNum != nil {
			return err
		}
		d.Duration = time.Duration(n) * time.Millisecond
		return nil
	}
	return d.Decode(s)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Decode implements envconfig.Decoder.
func (d *Duration) Decode(value string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("valifi", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called valifi.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Valifi Onboarding"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Gateway.BaseUrl = strings.TrimRight(strings.TrimSpace(cnf.Gateway.BaseUrl), "/")

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	cnf.Tracking.addDefaults()
	cnf.Queue.addDefaults()

	if cnf.Gateway.Timeout.Duration == 0 {
		cnf.Gateway.Timeout = Duration{30 * time.Second}
	}

	if cnf.PostHog.Endpoint == "" {
		cnf.PostHog.Endpoint = "https://eu.i.posthog.com"
	}

	return nil
}

func (t *TrackingConfig) addDefaults() {
	if len(t.AllowedOrigins) == 0 {
		t.AllowedOrigins = DefaultAllowedOrigins
	}
	if t.MaxPayloadBytes <= 0 {
		t.MaxPayloadBytes = DEFAULT_MAX_PAYLOAD_BYTES
	}
	if t.MaxBulkEvents <= 0 {
		t.MaxBulkEvents = DEFAULT_MAX_BULK_EVENTS
	}
	if t.MaxFieldLength <= 0 {
		t.MaxFieldLength = DEFAULT_MAX_FIELD_LENGTH
	}
	if t.FlushDelay.Duration == 0 {
		t.FlushDelay = Duration{5 * time.Second}
	}
	if t.InactivityThreshold.Duration == 0 {
		t.InactivityThreshold = Duration{30 * time.Second}
	}
	if t.ScrollDebounce.Duration == 0 {
		t.ScrollDebounce = Duration{500 * time.Millisecond}
	}
	if t.VisitorCookieDays <= 0 {
		t.VisitorCookieDays = 365
	}
	if t.SessionLockTimeout.Duration == 0 {
		t.SessionLockTimeout = Duration{5 * time.Second}
	}
	if t.SessionCacheDuration.Duration == 0 {
		t.SessionCacheDuration = Duration{10 * time.Minute}
	}
}

func (q *QueueConfig) addDefaults() {
	if q.LeadQueue == "" {
		q.LeadQueue = DEFAULT_LEAD_QUEUE
	}
	if q.ConversionQueue == "" {
		q.ConversionQueue = DEFAULT_CONVERSION_QUEUE
	}
	if q.NumberOfWorkers <= 0 {
		q.NumberOfWorkers = 10
	}
	if q.LeadMaxRetries <= 0 {
		q.LeadMaxRetries = 3
	}
	if q.LeadInitialInterval.Duration == 0 {
		q.LeadInitialInterval = Duration{60 * time.Second}
	}
	if q.LeadMaxInterval.Duration == 0 {
		q.LeadMaxInterval = Duration{600 * time.Second}
	}
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	mockConfig.Tracking.addDefaults()
	mockConfig.Queue.addDefaults()
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
