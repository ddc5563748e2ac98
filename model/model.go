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

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
)

// NewIdentifier returns a random UUIDv4 string used for tracking session and visitor ids.
func NewIdentifier() string {
	return uuid.NewString()
}

// HashIP returns the first 16 hex characters of the SHA-256 digest of an IP address.
// Raw addresses are never persisted.
func HashIP(ip string) string {
	if ip == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:])[:16]
}

// UKLocation is the time zone every visitor timestamp is bucketed in.
var UKLocation = loadUKLocation()

func loadUKLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		return time.UTC
	}
	return loc
}

// UKTime converts t into UK local time.
func UKTime(t time.Time) time.Time {
	return t.In(UKLocation)
}
