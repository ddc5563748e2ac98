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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	"github.com/craigmalenga/valifi-batch-sub000/model"
)

func TestSortAddresses(t *testing.T) {
	addresses := []gateway.PostalAddress{
		{Number: "12", Street1: "High Street"},
		{Number: "2", Street1: "High Street"},
		{Number: "2", SubBuilding: "Flat 10", Street1: "High Street"},
		{Number: "2", SubBuilding: "Flat 9", Street1: "High Street"},
		{Number: "100", Street1: "High Street"},
	}
	SortAddresses(addresses)

	var labels []string
	for _, a := range addresses {
		labels = append(labels, AddressLabel(a))
	}
	assert.Equal(t, []string{
		"2, High Street",
		"2, Flat 9, High Street",
		"2, Flat 10, High Street",
		"12, High Street",
		"100, High Street",
	}, labels)
}

func TestAddressSortKey(t *testing.T) {
	assert.Equal(t, "0007", AddressSortKey(gateway.PostalAddress{Number: "7"}))
	assert.Equal(t, "0007a", AddressSortKey(gateway.PostalAddress{Number: "7a"}))
	assert.Equal(t, "0007_003", AddressSortKey(gateway.PostalAddress{Number: "7", Name: "3"}))
	assert.Equal(t, "_Rose Cottage", AddressSortKey(gateway.PostalAddress{Name: "Rose Cottage"}))
}

func TestToAddress(t *testing.T) {
	tests := []struct {
		name string
		in   gateway.PostalAddress
		want model.Address
	}{
		{
			name: "sub building",
			in:   gateway.PostalAddress{Number: "2", SubBuilding: "Flat 9", Street1: "High Street", PostTown: "Leeds", Postcode: "LS1 1AA"},
			want: model.Address{BuildingNumber: "2", Flat: "Flat 9", Street: "High Street", PostTown: "Leeds", PostCode: "LS1 1AA"},
		},
		{
			name: "numeric name",
			in:   gateway.PostalAddress{Number: "2", Name: "4", Street1: "High Street"},
			want: model.Address{BuildingNumber: "2", Flat: "Flat 4", Street: "High Street"},
		},
		{
			name: "named building",
			in:   gateway.PostalAddress{Name: "Rose Cottage", Flat: "1", Street1: "Lane"},
			want: model.Address{BuildingName: "Rose Cottage", Flat: "Flat 1", Street: "Lane"},
		},
		{
			name: "house",
			in:   gateway.PostalAddress{House: "Annexe", Street1: "Lane"},
			want: model.Address{Flat: "Annexe", Street: "Lane"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToAddress(tt.in))
		})
	}
}
