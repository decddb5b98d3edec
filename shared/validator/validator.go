// Package validator wraps go-playground/validator with the custom tags the
// request DTOs rely on: portal, empty, mimetypes and maxfilesize.
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"slices"
	"strconv"
	"strings"

	val "github.com/go-playground/validator/v10"

	"portal/config"
	"portal/shared/base64"
	"portal/shared/constant"
	"portal/shared/failure"
)

const bytesPerMegabyte = 1024.0 * 1024.0

var validate *val.Validate

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	cfg := config.Get()

	custom := map[string]val.Func{
		"portal":      portalValidation(cfg),
		"empty":       validateEmpty,
		"mimetypes":   validateMimetypes,
		"maxfilesize": validateMaxFileSize,
	}

	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// portalValidation dispatches to the field value's own Validate(cfg) method,
// letting domain types carry config-dependent rules.
func portalValidation(cfg *config.Config) val.Func {
	return func(fl val.FieldLevel) bool {
		method := fl.Field().MethodByName("Validate")
		if !method.IsValid() {
			return false
		}

		result := method.Call([]reflect.Value{reflect.ValueOf(cfg)})

		return result[0].Interface() == nil
	}
}

func validateEmpty(fl val.FieldLevel) bool {
	return fl.Field().IsZero()
}

// validateMimetypes accepts multipart uploads and base64 data URIs, checking
// the declared content type against the space-separated tag parameter.
func validateMimetypes(field val.FieldLevel) bool {
	var contentType string

	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		contentType = value.Header.Get(constant.RequestHeaderContentType)
	case string:
		contentType = base64.GetContentType(value)
		if contentType == "" {
			return false
		}
	}

	return slices.Contains(strings.Split(field.Param(), " "), contentType)
}

// validateMaxFileSize limits uploads to the tag parameter, in megabytes.
func validateMaxFileSize(field val.FieldLevel) bool {
	var size int

	switch value := field.Field().Interface().(type) {
	case multipart.FileHeader:
		size = int(value.Size)
	case string:
		size = len(value)
	}

	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return size <= int(maxSizeMB*bytesPerMegabyte)
}

// Validate decodes the JSON body into data and validates the result. Both
// decode and validation problems surface as bad-request failures.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

// ValidateStruct validates data against its struct tags.
func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

// ValidateVar validates a single value against a tag expression.
func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
