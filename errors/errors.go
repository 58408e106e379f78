package errors

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Errors collects multiple errors into one value that still satisfies the error interface
type Errors []error

// ErrIf appends an error with failureMessage if the condition is true.
// Returns the condition so checks can be chained.
func (e *Errors) ErrIf(condition bool, failureMessage string, formatArgs ...interface{}) bool {
	if condition {
		*e = append(*e, errors.Errorf(failureMessage, formatArgs...))
	}
	return condition
}

// AddErr appends err if it is not nil. Flattens nested Errors values.
func (e *Errors) AddErr(err error) bool {
	if err != nil {
		if errs, ok := err.(Errors); ok {
			*e = append(*e, errs...)
		} else {
			*e = append(*e, err)
		}
	}
	return err == nil
}

// ErrOrNil returns nil when no errors were collected, the sole error when there
// is exactly one, and e otherwise
func (e Errors) ErrOrNil() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	default:
		return e
	}
}

func (e Errors) Error() string {
	var buf strings.Builder
	for i, err := range e {
		if i != 0 {
			buf.WriteRune('\n')
		}
		buf.WriteString(err.Error())
	}
	return buf.String()
}

func (e Errors) MarshalJSON() ([]byte, error) {
	var errs []interface{}
	for _, err := range e {
		switch err := err.(type) {
		case json.Marshaler:
			errs = append(errs, err)
		default:
			errs = append(errs, map[string]interface{}{"Description": err.Error()})
		}
	}
	return json.Marshal(errs)
}
