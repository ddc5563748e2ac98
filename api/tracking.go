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
	"errors"
	"io"
	"net/http"

	apimodel "github.com/craigmalenga/valifi-batch-sub000/api/model"
	"github.com/craigmalenga/valifi-batch-sub000/internal/apierror"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const visitorCookie = "visitor_id"

// respondError writes err with the status its apierror code maps to. Errors
// from the service that are not API errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	var apiErr apierror.APIError
	if errors.As(err, &apiErr) && status != http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": apiErr.Message})
		return
	}
	logrus.WithError(err).WithField("path", c.FullPath()).Error("tracking request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// bindFailed answers a body that could not be decoded. A body cut off by the
// payload cap gets the same 403 the guard gives a declared oversize body.
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid request"})
		return
	}
	badRequest(c, err)
}

func (a Api) TrackVisitor(c *gin.Context) {
	var payload apimodel.TrackVisitor
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindFailed(c, err)
		return
	}
	if err := payload.Validate(a.limits); err != nil {
		badRequest(c, err)
		return
	}

	if payload.VisitorID == "" {
		if cookie, err := c.Cookie(visitorCookie); err == nil && cookie != "" {
			payload.VisitorID = cookie
		} else {
			payload.VisitorID = model.NewIdentifier()
		}
	}

	_, err := a.valifi.TrackVisitor(c.Request.Context(), payload.VisitorRecord, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookie, payload.VisitorID, a.conf.Tracking.VisitorCookieDays*24*60*60, "/", "", true, false)
	c.JSON(http.StatusOK, gin.H{
		"tracked":    true,
		"session_id": payload.SessionID,
		"visitor_id": payload.VisitorID,
	})
}

func (a Api) TrackDetailedEvent(c *gin.Context) {
	var event model.TrackingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		bindFailed(c, err)
		return
	}
	if err := apimodel.ValidateEvent(event, a.limits); err != nil {
		badRequest(c, err)
		return
	}

	if err := a.valifi.TrackDetailedEvent(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true})
}

func (a Api) TrackBulkEvents(c *gin.Context) {
	var bulk model.BulkEvents
	if err := c.ShouldBindJSON(&bulk); err != nil {
		bindFailed(c, err)
		return
	}
	if err := apimodel.ValidateBulk(bulk, a.limits); err != nil {
		badRequest(c, err)
		return
	}

	n, err := a.valifi.TrackBulkEvents(c.Request.Context(), bulk)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true, "events_processed": n})
}

func (a Api) TrackFormEvent(c *gin.Context) {
	var event model.FormEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		bindFailed(c, err)
		return
	}
	if err := apimodel.ValidateFormEvent(event, a.limits); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := a.valifi.TrackFormEvent(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true})
}

func (a Api) TrackConversion(c *gin.Context) {
	var conversion model.Conversion
	if err := c.ShouldBindJSON(&conversion); err != nil {
		bindFailed(c, err)
		return
	}
	if err := apimodel.ValidateConversion(conversion, a.limits); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := a.valifi.TrackConversion(c.Request.Context(), conversion); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true})
}

func (a Api) UpdateVisitorData(c *gin.Context) {
	var update model.VisitorDataUpdate
	if err := c.ShouldBindJSON(&update); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}
	if err := apimodel.ValidateVisitorData(update); err != nil {
		badRequest(c, err)
		return
	}

	if err := a.valifi.UpdateVisitorData(c.Request.Context(), update); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (a Api) SendResumeLink(c *gin.Context) {
	var req apimodel.ResumeLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	link, err := a.valifi.SendResumeLink(c.Request.Context(), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
