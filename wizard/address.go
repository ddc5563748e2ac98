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

package wizard

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	"github.com/craigmalenga/valifi-batch-sub000/model"
)

var (
	leadingNumber = regexp.MustCompile(`^(\d+)(.*)$`)
	flatNumber    = regexp.MustCompile(`(?i)FLAT\s+(\d+)`)
)

func isNumeric(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// AddressSortKey orders lookup results naturally: building numbers are zero padded to four
// digits and flat numbers to three.
func AddressSortKey(addr gateway.PostalAddress) string {
	var key string
	if number := string(addr.Number); number != "" {
		if m := leadingNumber.FindStringSubmatch(number); m != nil {
			key = padLeft(m[1], 4) + m[2]
		} else {
			key = number
		}
	}

	name := string(addr.Name)
	switch {
	case addr.SubBuilding != "":
		if m := flatNumber.FindStringSubmatch(addr.SubBuilding); m != nil {
			key += "_" + padLeft(m[1], 3)
		} else {
			key += "_" + addr.SubBuilding
		}
	case name != "" && isNumeric(name):
		key += "_" + padLeft(name, 3)
	case name != "":
		key += "_" + name
	}
	return key
}

// SortAddresses sorts lookup results in place by AddressSortKey.
func SortAddresses(addresses []gateway.PostalAddress) {
	sort.SliceStable(addresses, func(i, j int) bool {
		return strings.ToLower(AddressSortKey(addresses[i])) < strings.ToLower(AddressSortKey(addresses[j]))
	})
}

// AddressLabel is the one line description shown in the address picker.
func AddressLabel(addr gateway.PostalAddress) string {
	number, name, flat := string(addr.Number), string(addr.Name), string(addr.Flat)
	numericName := name != "" && isNumeric(name)

	parts := make([]string, 0, 5)
	if number != "" {
		parts = append(parts, number)
	}
	if name != "" {
		if numericName && number != "" {
			parts = append(parts, "Flat "+name)
		} else {
			parts = append(parts, name)
		}
	}
	if addr.SubBuilding != "" && !numericName {
		parts = append(parts, addr.SubBuilding)
	}
	if flat != "" && addr.SubBuilding == "" && !numericName {
		parts = append(parts, "Flat "+flat)
	}
	if addr.Street1 != "" {
		parts = append(parts, addr.Street1)
	}
	if addr.PostTown != "" {
		parts = append(parts, addr.PostTown)
	}
	return strings.Join(parts, ", ")
}

// ToAddress maps a lookup result onto the form's address fields. The flat field takes the
// sub building, flat, numeric name or house, in that order of preference.
func ToAddress(addr gateway.PostalAddress) model.Address {
	number, name, flat := string(addr.Number), string(addr.Name), string(addr.Flat)
	numericName := name != "" && isNumeric(name)

	a := model.Address{
		BuildingNumber: number,
		Street:         addr.Street1,
		District:       addr.District,
		County:         addr.County,
		PostTown:       addr.PostTown,
		PostCode:       addr.Postcode,
	}
	if name != "" && !numericName {
		a.BuildingName = name
	}

	switch {
	case addr.SubBuilding != "":
		a.Flat = addr.SubBuilding
	case flat != "":
		a.Flat = fmt.Sprintf("Flat %s", flat)
	case numericName && number != "":
		a.Flat = fmt.Sprintf("Flat %s", name)
	case addr.House != "":
		a.Flat = addr.House
	}
	return a
}
