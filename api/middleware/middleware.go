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

package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware creates a middleware for rate limiting using Tollbooth
func RateLimitMiddleware(conf *config.Configuration) gin.HandlerFunc {
	if conf.RateLimit.RequestsPerSecond == nil || conf.RateLimit.Burst == nil {
		// Rate limiting is disabled
		return func(c *gin.Context) {
			c.Next()
		}
	}

	rps := *conf.RateLimit.RequestsPerSecond
	burst := *conf.RateLimit.Burst
	ttl := time.Hour
	if conf.RateLimit.CleanupIntervalSec != nil {
		ttl = time.Duration(*conf.RateLimit.CleanupIntervalSec) * time.Second
	}

	lmt := tollbooth.NewLimiter(rps, &limiter.ExpirableOptions{
		DefaultExpirationTTL: ttl,
	})
	lmt.SetBurst(burst)
	return func(c *gin.Context) {
		httpError := tollbooth.LimitByRequest(lmt, c.Writer, c.Request)
		if httpError != nil {
			c.AbortWithStatusJSON(httpError.StatusCode, gin.H{"error": httpError.Message})
			return
		}
		c.Next()
	}
}

// TrackingGuard rejects tracking calls from unknown sites and bodies whose
// declared length exceeds MaxPayloadBytes with 403. Bodies of unknown length
// are cut off at MaxPayloadBytes. A request without Origin is checked against
// its Referer; a request with neither passes.
func TrackingGuard(conf config.TrackingConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := c.Request
		if !allowedSource(req, conf.AllowedOrigins) || req.ContentLength > conf.MaxPayloadBytes {
			logrus.WithFields(logrus.Fields{
				"origin":         req.Header.Get("Origin"),
				"referer":        req.Referer(),
				"content_length": req.ContentLength,
			}).Warn("rejected tracking request")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid request"})
			return
		}
		if req.Body != nil {
			req.Body = http.MaxBytesReader(c.Writer, req.Body, conf.MaxPayloadBytes)
		}
		c.Next()
	}
}

func allowedSource(req *http.Request, allowed []string) bool {
	if origin := req.Header.Get("Origin"); origin != "" {
		return hostAllowed(origin, allowed)
	}
	if referer := req.Referer(); referer != "" {
		return hostAllowed(referer, allowed)
	}
	return true
}

func hostAllowed(raw string, allowed []string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range allowed {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" && (host == domain || strings.HasSuffix(host, "."+domain)) {
			return true
		}
	}
	return false
}
