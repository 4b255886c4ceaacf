package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"ridetracker/pkg/apperr"
)

var validate = validator.New()

func validateStruct(v interface{}) error {
	return asValidation(validate.Struct(v))
}

func validateVar(field string, v interface{}, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		return apperr.Validation("invalid %s", field)
	}
	return nil
}

func asValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation("invalid %s: failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return apperr.Validation("%v", err)
}
