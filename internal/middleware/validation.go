package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/ajg/form"
	"github.com/go-playground/validator/v10"

	"macrodash/internal/catalog"
	apierrors "macrodash/internal/errors"
)

// ISODate is the layout accepted by the isodate tag.
const ISODate = "2006-01-02"

// Validator binds query strings into request structs and validates them
// with struct tags. Messages use the json names of the fields.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the frequency and isodate tags.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// The tag functions never fail for these names.
	_ = v.RegisterValidation("frequency", isFrequency)
	_ = v.RegisterValidation("isodate", isISODate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// BindQuery decodes r's query string into dst, a pointer to a struct with
// form tags, then validates it. Repeated keys are joined with commas, so
// vars=a&vars=b reads as vars=a,b. Unknown keys are ignored.
func (v *Validator) BindQuery(r *http.Request, dst interface{}) error {
	values := url.Values{}
	for key, vs := range r.URL.Query() {
		values.Set(key, strings.Join(vs, ","))
	}

	dec := form.NewDecoder(nil)
	dec.IgnoreUnknownKeys(true)
	if err := dec.DecodeValues(dst, values); err != nil {
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeInvalidRequest,
			"Invalid query parameters", err.Error())
	}
	return v.ValidateStruct(dst)
}

// ValidateStruct validates a struct and returns validation errors
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.Wrap(err, http.StatusBadRequest, apierrors.CodeInvalidRequest, "Invalid request")
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "frequency":
		names := make([]string, len(catalog.Frequencies))
		for i, f := range catalog.Frequencies {
			names[i] = f.String()
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isFrequency(fl validator.FieldLevel) bool {
	_, err := catalog.ParseFrequency(fl.Field().String())
	return err == nil
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(ISODate, fl.Field().String())
	return err == nil
}
