package util

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// в ошибках поля называются так же, как в JSON
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	mustRegister(v, "notnumeric", notNumeric)
	mustRegister(v, "maxbytes", maxBytes)
	mustRegister(v, "nefieldfold", notEqualFoldField)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ValidateStruct проверяет теги validate и возвращает сообщения по полям
// nil означает, что ошибок нет
func ValidateStruct(s any) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields[fieldError.Field()] = validationMessage(fieldError)
	}
	return fields
}

func validationMessage(fieldError validator.FieldError) string {
	field := fieldError.Field()
	switch fieldError.Tag() {
	case "required":
		switch field {
		case "email":
			return "email обязателен"
		case "password":
			return "пароль обязателен"
		}
		return "обязательное поле"
	case "email":
		return "некорректный email"
	case "min":
		return "пароль должен содержать минимум " + fieldError.Param() + " символов"
	case "maxbytes":
		return "пароль не должен превышать " + fieldError.Param() + " байт"
	case "notnumeric":
		return "пароль не может состоять только из цифр"
	case "nefieldfold":
		return "пароль не должен совпадать с email"
	default:
		return "некорректное значение"
	}
}

func notNumeric(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, c := range value {
		if !unicode.IsDigit(c) {
			return true
		}
	}
	return value == ""
}

// maxBytes : ограничение в байтах, тег max считает руны
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// notEqualFoldField : как nefield, но без учета регистра
func notEqualFoldField(fl validator.FieldLevel) bool {
	other := reflect.Indirect(fl.Parent()).FieldByName(fl.Param())
	if !other.IsValid() {
		return true
	}
	other = reflect.Indirect(other)
	if other.Kind() != reflect.String {
		return true
	}
	return !strings.EqualFold(fl.Field().String(), other.String())
}
