package envelope

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/qgate/fault"
)

func TestFrame(t *testing.T) {
	type testCase struct {
		name     string
		result   interface{}
		err      error
		expected string
	}

	tests := []testCase{
		{
			name:     "structured result",
			result:   map[string]string{"address": "QgB7zMfujQMLkisp1Lc8PBkVYs75sYB3vV"},
			expected: `{"ok":true,"result":{"address":"QgB7zMfujQMLkisp1Lc8PBkVYs75sYB3vV"},"error":null}`,
		},
		{
			name:     "result containing error key is still success",
			result:   map[string]interface{}{"error": "not really"},
			expected: `{"ok":true,"result":{"error":"not really"},"error":null}`,
		},
		{
			name:     "json text embedded",
			result:   []byte(`["a","b"]`),
			expected: `{"ok":true,"result":["a","b"],"error":null}`,
		},
		{
			name:     "plain text passed through",
			result:   []byte(`12.50000000`),
			expected: `{"ok":true,"result":12.50000000,"error":null}`,
		},
		{
			name:     "non json text",
			result:   []byte(`3Wq8...sig`),
			expected: `{"ok":true,"result":"3Wq8...sig","error":null}`,
		},
		{
			name:     "unserializable value",
			result:   func() {},
			expected: "",
		},
		{
			name:     "classified error",
			err:      fault.MissingFields([]string{"list_name"}),
			expected: `{"ok":false,"result":null,"error":{"error":"Missing fields: list_name","kind":"MissingFields"}}`,
		},
		{
			name:     "unclassified error is hidden",
			err:      errors.New("pq: connection reset"),
			expected: `{"ok":false,"result":null,"error":{"error":"Request could not be fulfilled","kind":"UpstreamFailure"}}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := Frame(tc.result, tc.err)
			require.NoError(t, env.Validate())
			data, err := env.Marshal()
			require.NoError(t, err)
			if tc.expected == "" {
				assert.True(t, json.Valid(data))
				return
			}
			assert.JSONEq(t, tc.expected, string(data))
		})
	}
}

func TestEnvelope_Validate(t *testing.T) {
	assert.Error(t, (&Envelope{OK: true, Result: 1, Error: &ErrorPayload{Error: "x"}}).Validate())
	assert.Error(t, (&Envelope{OK: false}).Validate())
	assert.Error(t, (&Envelope{OK: true}).Validate())
	assert.NoError(t, Success(nil).Validate())
	assert.Equal(t, "r1", Success(1).WithRequestID("r1").RequestID)
}
