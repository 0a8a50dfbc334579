package criteria

import (
	"github.com/viant/simrun/service/dao"
)

// StateParameter is the parameter name used to filter records by state.
const StateParameter = "State"

// States returns the states requested by the State parameter; ok is false
// when no State parameter is supplied.
func States(parameters []*dao.Parameter) (states []string, ok bool) {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != StateParameter {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			return []string{actual}, true
		case []string:
			return actual, true
		}
	}
	return nil, false
}

// FilterByState returns true when state matches the State parameter, or when
// no State parameter is supplied.
func FilterByState(state string, parameters []*dao.Parameter) bool {
	states, ok := States(parameters)
	if !ok {
		return true
	}
	for _, candidate := range states {
		if state == candidate {
			return true
		}
	}
	return false
}
