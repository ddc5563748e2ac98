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
	"strings"

	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/mssola/useragent"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// ParseUserAgent classifies a User-Agent header into a device type and a
// "name version" browser label.
func ParseUserAgent(header string) model.Device {
	ua := useragent.New(header)

	device := model.Device{Type: DeviceDesktop}
	switch {
	case ua.Platform() == "iPad",
		strings.Contains(header, "Android") && !strings.Contains(header, "Mobile"):
		device.Type = DeviceTablet
	case ua.Mobile():
		device.Type = DeviceMobile
	}

	name, version := ua.Browser()
	if name == "" {
		name = "Other"
	}
	device.Browser = strings.TrimSpace(name + " " + version)
	return device
}
