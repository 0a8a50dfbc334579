package dao

// Parameter narrows List results; implementations ignore parameters they do
// not understand.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a parameter holding a single string, or a []string
// for any other number of values.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
