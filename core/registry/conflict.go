package registry

import (
	"reflect"

	"github.com/spf13/cast"
)

// Resolution labels how an attribute conflict was decided
type Resolution string

const (
	ResolutionIdentical       Resolution = "identical"
	ResolutionNewValue        Resolution = "new_value"
	ResolutionExistingValue   Resolution = "existing_value"
	ResolutionConfidenceBased Resolution = "confidence_based"
)

// ResolveConflict decides between a stored attribute value and an incoming
// one. Identical values average their confidences; an empty side yields the
// non-empty one; otherwise the value carried by the higher confidence wins,
// with ties keeping the existing value. Pure function, no registry state.
func ResolveConflict(existing, incoming interface{}, confExisting, confIncoming float64) (interface{}, float64, Resolution) {
	if reflect.DeepEqual(existing, incoming) {
		return existing, (confExisting + confIncoming) / 2, ResolutionIdentical
	}

	if isEmptyValue(existing) {
		return incoming, confIncoming, ResolutionNewValue
	}

	if isEmptyValue(incoming) {
		return existing, confExisting, ResolutionExistingValue
	}

	if confIncoming > confExisting {
		return incoming, confIncoming, ResolutionConfidenceBased
	}
	return existing, confExisting, ResolutionConfidenceBased
}

// isEmptyValue reports whether an attribute value counts as absent
func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
