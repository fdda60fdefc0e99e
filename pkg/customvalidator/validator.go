// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует доменные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("container_number", isContainerNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("currency_code", isCurrencyCode); err != nil {
		return err
	}
	return nil
}

// isContainerNumber - номер контейнера по ISO 6346: 4 буквы + 7 цифр.
func isContainerNumber(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[A-Z]{4}\d{7}$`)
	return re.MatchString(fl.Field().String())
}

// isCurrencyCode - трёхбуквенный код валюты (ISO 4217).
func isCurrencyCode(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[A-Z]{3}$`)
	return re.MatchString(fl.Field().String())
}
