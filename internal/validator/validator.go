package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New builds the validator used by the stores to revalidate entities before
// every write, so the application-level rules and the collection-level
// $jsonSchema validators agree on what a well-formed document is.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterValidation("nowhitespace", validateNoWhitespace)
	validate.RegisterCustomTypeFunc(decimalAsFloat, decimal.Decimal{})

	return validate
}

// decimalAsFloat lets the numeric min/max tags apply to decimal fields.
func decimalAsFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}

	return nil
}

func validateNoWhitespace(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), " \t\n\r")
}
