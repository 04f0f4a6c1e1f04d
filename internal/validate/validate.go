// Package validate runs the binding rules of a submitted form and turns the
// failures into the messages shown to the user.
package validate

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Form is a bound request whose text fields are trimmed before its rules run.
type Form interface {
	TrimSpace()
}

// Check trims f and validates it with the binding tags on its fields. It
// returns one message per failing field, in field order. The error is set
// only when f could not be validated at all.
func Check(f Form) ([]string, error) {
	f.TrimSpace()
	err := binding.Validator.ValidateStruct(f)
	if err == nil {
		return nil, nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil, err
	}
	out := make([]string, 0, len(ves))
	for _, fe := range ves {
		out = append(out, Message(fe.StructField(), fe.Tag()))
	}
	return out, nil
}

// IsBindingFailure reports whether err from gin's ShouldBind only carries
// rule failures, which Check reports again after trimming.
func IsBindingFailure(err error) bool {
	var ves validator.ValidationErrors
	return errors.As(err, &ves)
}
