package validators

import (
	"github.com/go-playground/validator/v10"

	"github.com/shijuleon/allot/domain/core/valueobjects"
)

// NumeralTag is the struct tag for string fields holding a store number
const NumeralTag = "numeral"

// NewSchemaValidator returns a validator that understands the numeral tag
func NewSchemaValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation(NumeralTag, func(fl validator.FieldLevel) bool {
		return valueobjects.IsNumeral(fl.Field().String())
	})
	return v
}
