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

package api

import (
	"net/http"

	valifi "github.com/craigmalenga/valifi-batch-sub000"
	"github.com/craigmalenga/valifi-batch-sub000/api/middleware"
	apimodel "github.com/craigmalenga/valifi-batch-sub000/api/model"
	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Api struct {
	valifi *valifi.Valifi
	router *gin.Engine
	conf   *config.Configuration
	limits apimodel.Limits
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.GET("/health", a.Health)

	tracking := router.Group("/tracking", middleware.TrackingGuard(a.conf.Tracking))
	tracking.POST("/track-visitor", a.TrackVisitor)
	tracking.POST("/track-detailed-event", a.TrackDetailedEvent)
	tracking.POST("/track-bulk-events", a.TrackBulkEvents)
	tracking.POST("/track-form-event", a.TrackFormEvent)
	tracking.POST("/track-conversion", a.TrackConversion)
	tracking.POST("/update-visitor-data", a.UpdateVisitorData)
	tracking.POST("/send-resume-link", a.SendResumeLink)
	return a.router
}

func NewAPI(v *valifi.Valifi) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{valifi: v, router: r, conf: conf, limits: apimodel.LimitsFromConfig(conf.Tracking)}
}

func (a Api) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
