package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/ajg/form"
	"github.com/go-playground/validator/v10"

	apierrors "shopmetrics/internal/errors"
)

// Validator binds query parameters into request structs and validates them
// using their validate tags
type Validator struct {
	validate *validator.Validate
	decoder  *form.Decoder
	logger   *slog.Logger
}

// NewValidator creates a validator that reports fields by their form tag name
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	decoder := form.NewDecoder(nil)
	decoder.IgnoreUnknownKeys(true)

	return &Validator{
		validate: v,
		decoder:  decoder,
		logger:   logger.With(slog.String("component", "validator")),
	}
}

// Bind fills dst from the request query string and validates the result
func (v *Validator) Bind(r *http.Request, dst interface{}) error {
	if err := v.BindQuery(r, dst); err != nil {
		v.logger.DebugContext(r.Context(), "query binding failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		return err
	}
	return v.ValidateStruct(dst)
}

// BindQuery decodes query parameters into the struct dst points to, matched
// by their form tag. Blank parameters leave the field untouched and unknown
// parameters are ignored. A value that does not fit its field is reported
// as an invalid parameter under its query name.
func (v *Validator) BindQuery(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to a struct, got %T", dst)
	}

	query := r.URL.Query()
	for _, name := range slices.Sorted(maps.Keys(query)) {
		raw := strings.TrimSpace(query.Get(name))
		if raw == "" {
			continue
		}
		if err := v.decoder.DecodeValues(dst, url.Values{name: {raw}}); err != nil {
			return apierrors.InvalidParameterError(name, fmt.Errorf("%q is not a valid value", raw))
		}
	}
	return nil
}

// ValidateStruct validates a struct and returns the failing fields as a
// VALIDATION_FAILED API error
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]apierrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.FieldError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewFieldErrors(fields)
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
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
