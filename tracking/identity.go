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

package tracking

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/model"
)

const (
	sessionIDKey       = "session_id"
	initialSentKey     = "tracking_initial_sent"
	visitorCookieName  = "visitor_id"
	consentStorageName = "tracking_consent"
)

// SessionStore is tab scoped storage: it lives as long as the browser tab.
type SessionStore interface {
	Get(key string) string
	Set(key, value string) error
}

// CookieJar reads and writes the page's cookies.
type CookieJar interface {
	Cookie(name string) string
	SetCookie(c *http.Cookie) error
}

// ConsentStore reports whether the visitor agreed to tracking.
type ConsentStore interface {
	HasConsent() bool
}

// MemoryStore is an in-memory SessionStore, CookieJar and ConsentStore.
type MemoryStore struct {
	mu      sync.Mutex
	values  map[string]string
	cookies map[string]*http.Cookie
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string), cookies: make(map[string]*http.Cookie)}
}

func (m *MemoryStore) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Cookie(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.cookies[name]; ok {
		return c.Value
	}
	return ""
}

// CookieDetails returns the cookie as it was last set.
func (m *MemoryStore) CookieDetails(name string) *http.Cookie {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cookies[name]
}

func (m *MemoryStore) SetCookie(c *http.Cookie) error {
	if err := c.Valid(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies[c.Name] = c
	return nil
}

// SetConsent records the visitor's tracking choice.
func (m *MemoryStore) SetConsent(given bool) {
	_ = m.Set(consentStorageName, fmt.Sprint(given))
}

func (m *MemoryStore) HasConsent() bool {
	return m.Get(consentStorageName) == "true"
}

func sessionID(store SessionStore) (string, error) {
	if store == nil {
		return "", ErrTrackingDisabled
	}
	if id := store.Get(sessionIDKey); id != "" {
		return id, nil
	}
	id := model.NewIdentifier()
	if err := store.Set(sessionIDKey, id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTrackingDisabled, err)
	}
	return id, nil
}

func visitorID(jar CookieJar, now time.Time, days int) (string, error) {
	if jar == nil {
		return "", ErrTrackingDisabled
	}
	if id := jar.Cookie(visitorCookieName); id != "" {
		return id, nil
	}
	id := model.NewIdentifier()
	err := jar.SetCookie(&http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		Expires:  now.Add(time.Duration(days) * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTrackingDisabled, err)
	}
	return id, nil
}
