package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var (
	validate    = newValidator()
	phoneRegion = "UZ"
)

// SetPhoneRegion задает регион для разбора номеров без международного префикса
func SetPhoneRegion(region string) {
	if region != "" {
		phoneRegion = region
	}
}

func newValidator() *validator.Validate {
	v := validator.New()

	// В ошибках используем имена полей из json тегов
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhoneNumber(fl.Field().String(), phoneRegion) == nil
	})

	return v
}

// ValidatePhoneNumber проверяет номер телефона для кода страны
func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil
}

// ValidateStruct проверяет структуру по тегам validate.
// Возвращает nil или карту поле -> правило.
func ValidateStruct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return ProcessValidationErrors(err)
}

// ProcessValidationErrors переводит ошибки валидатора в карту поле -> правило
func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorResponse["_"] = err.Error()
		return errorResponse
	}

	for _, ve := range validationErrors {
		reason := ve.Tag()
		if ve.Param() != "" {
			reason += "=" + ve.Param()
		}
		errorResponse[fieldPath(ve.Namespace())] = reason
	}

	return errorResponse
}

// fieldPath отбрасывает имя корневой структуры: PlaceOrderInput.items[1].quantity -> items[1].quantity
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
