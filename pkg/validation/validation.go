package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Register makes gin's binding engine report json field names instead of
// struct field names. Call once at startup.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

// Validator returns a standalone validator reading the same `binding` tags as
// gin, for validating values that do not come from a request body.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(jsonTagName)
	})
	return validate
}

// Struct validates obj and returns a 422 AppError listing every failing field.
func Struct(obj interface{}) error {
	if err := Validator().Struct(obj); err != nil {
		return FromBindError(err)
	}
	return nil
}

// FromBindError converts the error returned by gin's ShouldBind* into an
// AppError. Validation failures become 422 with per-field messages; anything
// else (malformed JSON, wrong types) becomes 400.
func FromBindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError("Invalid request body")
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return apperror.NewValidationError(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s wajib diisi", fe.Field())
	case "email":
		return "Format email tidak valid"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s minimal %s karakter", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s minimal %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s maksimal %s karakter", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s maksimal %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s tidak boleh kurang dari %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s tidak boleh lebih dari %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s harus lebih dari %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s harus salah satu dari: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric":
		return fmt.Sprintf("%s harus berupa angka", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s harus berformat %s", fe.Field(), fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s tidak sama dengan %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s tidak valid", fe.Field())
	}
}

func jsonTagName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
