package validator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/qgate/fault"
)

func TestRequired(t *testing.T) {
	type testCase struct {
		name     string
		fields   map[string]interface{}
		required []string
		expected string
	}

	tests := []testCase{
		{
			name:     "all present",
			fields:   map[string]interface{}{"list_name": "blocked", "items": []interface{}{"a"}},
			required: []string{"list_name", "items"},
		},
		{
			name:     "single missing",
			fields:   map[string]interface{}{},
			required: []string{"list_name"},
			expected: "Missing fields: list_name",
		},
		{
			name:     "every missing field listed in declared order",
			fields:   map[string]interface{}{"name": "x"},
			required: []string{"name", "description", "tags", "creationBytes", "amount", "assetId", "type"},
			expected: "Missing fields: description, tags, creationBytes, amount, assetId, type",
		},
		{
			name: "falsy values count as missing",
			fields: map[string]interface{}{
				"coin":               "",
				"destinationAddress": nil,
				"amount":             float64(0),
			},
			required: []string{"coin", "destinationAddress", "amount"},
			expected: "Missing fields: coin, destinationAddress, amount",
		},
		{
			name:     "false and NaN are falsy",
			fields:   map[string]interface{}{"a": false, "b": math.NaN(), "c": true},
			required: []string{"a", "b", "c"},
			expected: "Missing fields: a, b",
		},
		{
			name:     "empty array is present",
			fields:   map[string]interface{}{"resources": []interface{}{}},
			required: []string{"resources"},
		},
		{
			name:     "nothing required",
			fields:   nil,
			required: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Required(tc.fields, tc.required...)
			if tc.expected == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Equal(t, tc.expected, err.Error())
				assert.True(t, fault.Is(err, fault.KindMissingFields))
			}
		})
	}
}

func TestMissing_OrderIndependent(t *testing.T) {
	fields := map[string]interface{}{"b": "x"}
	assert.ElementsMatch(t, []string{"a", "c"}, Missing(fields, "a", "b", "c"))
	assert.ElementsMatch(t, []string{"a", "c"}, Missing(fields, "c", "b", "a"))
}

func TestCheck(t *testing.T) {
	type testCase struct {
		name     string
		fields   map[string]interface{}
		required []string
		present  []string
		expected string
	}

	tests := []testCase{
		{
			name:     "empty present values pass",
			fields:   map[string]interface{}{"coin": "QORT", "destinationAddress": "", "amount": float64(0)},
			required: []string{"coin"},
			present:  []string{"destinationAddress", "amount"},
		},
		{
			name:     "absent and null present values are missing",
			fields:   map[string]interface{}{"coin": "QORT", "amount": nil},
			required: []string{"coin"},
			present:  []string{"destinationAddress", "amount"},
			expected: "Missing fields: destinationAddress, amount",
		},
		{
			name:     "required listed before present",
			fields:   map[string]interface{}{"coin": ""},
			required: []string{"coin"},
			present:  []string{"destinationAddress", "amount"},
			expected: "Missing fields: coin, destinationAddress, amount",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.fields, tc.required, tc.present)
			if tc.expected == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Equal(t, tc.expected, err.Error())
				assert.True(t, fault.Is(err, fault.KindMissingFields))
			}
		})
	}
}
