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

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/craigmalenga/valifi-batch-sub000/api"
	"github.com/craigmalenga/valifi-batch-sub000/config"
	trace "github.com/craigmalenga/valifi-batch-sub000/internal/traces"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
	"github.com/spf13/cobra"
)

/*
serveTLS starts an HTTPS server with certificates managed by CertMagic.
If no domain is specified, the server defaults to localhost.
*/
func serveTLS(r *gin.Engine, conf config.ServerConfig) error {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = conf.Email
	cfg := certmagic.NewDefault()

	domains := []string{conf.Domain}
	if conf.Domain == "" {
		log.Println("No domain specified, defaulting to localhost")
		domains = []string{"localhost"}
	}

	if err := cfg.ManageSync(context.Background(), domains); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + conf.Port,
		Handler:           r,
		TLSConfig:         cfg.TLSConfig(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting HTTPS server on %s\n", conf.Port)
	if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTPS server: %w", err)
	}
	return nil
}

// sendHeartbeat reports a liveness capture to PostHog every five minutes.
func sendHeartbeat(client posthog.Client, heartbeatID string) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			if err := client.Enqueue(posthog.Capture{
				DistinctId: heartbeatID,
				Event:      "server_heartbeat",
				Properties: map[string]interface{}{
					"timestamp": time.Now().UTC(),
				},
			}); err != nil {
				log.Printf("Failed to send heartbeat: %v", err)
			}
		}
	}()
}

func initializeRouter(v *valifiInstance) *gin.Engine {
	return api.NewAPI(v.valifi).Router()
}

func initializeTracing(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	shutdown, err := trace.SetupOTelSDK(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("error setting up OTel SDK: %v", err)
	}
	return shutdown, nil
}

// initializePostHog returns nil when no API key is configured.
func initializePostHog(cfg *config.Configuration) posthog.Client {
	if cfg.PostHog.ApiKey == "" {
		return nil
	}
	client, err := posthog.NewWithConfig(cfg.PostHog.ApiKey, posthog.Config{Endpoint: cfg.PostHog.Endpoint})
	if err != nil {
		log.Printf("PostHog disabled: %v", err)
		return nil
	}
	return client
}

func startServer(router *gin.Engine, cfg config.ServerConfig) error {
	if cfg.SSL {
		return serveTLS(router, cfg)
	}
	log.Printf("Starting server on http://localhost:%s", cfg.Port)
	return router.Run(":" + cfg.Port)
}

func initializeObservability(ctx context.Context, cfg *config.Configuration) (func(context.Context) error, error) {
	if !cfg.EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}
	return initializeTracing(ctx, cfg.ProjectName)
}

// closeInstance flushes analytics and releases the service connections.
func closeInstance(v *valifiInstance) {
	if v.analytics != nil {
		if err := v.analytics.Close(); err != nil {
			log.Printf("Error closing PostHog client: %v", err)
		}
	}
	if err := v.valifi.Close(); err != nil {
		log.Printf("Error closing valifi: %v", err)
	}
}

/*
serverCommands returns the command that starts the tracking receiver. It sets
up tracing and the PostHog heartbeat before serving the API.
*/
func serverCommands(v *valifiInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "start valifi tracking server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			defer closeInstance(v)

			shutdown, err := initializeObservability(ctx, v.cnf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			if v.analytics != nil {
				sendHeartbeat(v.analytics, uuid.New().String())
			}

			router := initializeRouter(v)
			if err := startServer(router, v.cnf.Server); err != nil {
				log.Fatal(err)
			}
		},
	}

	return cmd
}
