// Package validation wires go-playground/validator into echo so handlers
// can call c.Validate on bound request structs.
package validation

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterValidation("bed_status", validateBedStatus)
	v.RegisterValidation("clinical_status", validateClinicalStatus)
	v.RegisterValidation("discharge_type", validateDischargeType)
	return &Validator{validate: v}
}

// Validate implements echo.Validator. Field errors are surfaced as a 422
// so the caller can distinguish malformed JSON (400) from bad values.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func validateBedStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "available", "occupied", "reserved", "maintenance":
		return true
	}
	return false
}

func validateClinicalStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "critical", "stable":
		return true
	}
	return false
}

func validateDischargeType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "normal", "lama", "referral", "deceased":
		return true
	}
	return false
}
