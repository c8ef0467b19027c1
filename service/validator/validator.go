// Package validator checks untrusted request fields.
package validator

import (
	"math"

	"github.com/viant/qgate/fault"
)

// Required reports every name whose value is absent or falsy in fields. It
// never stops at the first problem.
func Required(fields map[string]interface{}, names ...string) error {
	return Check(fields, names, nil)
}

// Check reports, in one error, every required name that is absent or falsy
// followed by every present name that is absent or null. Present fields may
// hold empty values; their pipeline validates them.
func Check(fields map[string]interface{}, required, present []string) error {
	missing := Missing(fields, required...)
	missing = append(missing, Absent(fields, present...)...)
	if len(missing) > 0 {
		return fault.MissingFields(missing)
	}
	return nil
}

// Absent returns the names with no value or a null value, in the order given.
func Absent(fields map[string]interface{}, names ...string) []string {
	var absent []string
	for _, name := range names {
		if fields[name] == nil {
			absent = append(absent, name)
		}
	}
	return absent
}

// Missing returns the absent or falsy names in the order given.
func Missing(fields map[string]interface{}, names ...string) []string {
	var missing []string
	for _, name := range names {
		if IsFalsy(fields[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsFalsy follows JSON truthiness: null, false, 0, NaN and "" are falsy.
// Empty arrays and objects are truthy.
func IsFalsy(value interface{}) bool {
	switch actual := value.(type) {
	case nil:
		return true
	case bool:
		return !actual
	case string:
		return actual == ""
	case float64:
		return actual == 0 || math.IsNaN(actual)
	case float32:
		return actual == 0 || math.IsNaN(float64(actual))
	case int:
		return actual == 0
	case int64:
		return actual == 0
	case int32:
		return actual == 0
	case uint64:
		return actual == 0
	}
	return false
}
