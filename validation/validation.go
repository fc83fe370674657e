package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"github.com/meghashyamc/toolshelf/logger"
)

type Validator struct {
	validator                *validator.Validate
	logger                   logger.Logger
	tagValidationDetailsOnce sync.Once
	tagValidationDetailsMap  map[string]tagValidationDetails
}

type tagValidationDetails struct {
	validatorFunc validator.Func
	err           error
}

// enum is implemented by closed value sets (languages, search operators) that can report
// whether they hold one of their defined values.
type enum interface {
	IsValid() bool
}

func New(logger logger.Logger) (*Validator, error) {
	validator := &Validator{validator: validator.New(), logger: logger}
	validator.validator.RegisterTagNameFunc(useJSONFieldNames)
	if err := validator.registerCustomValidatorsForTags(); err != nil {
		return nil, err
	}

	return validator, nil
}

func (v *Validator) Validate(i any) error {

	if err := v.validator.Struct(i); err != nil {
		v.logger.Warn("validation failed", "err", err.Error())
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {

			tagValidationDetails, ok := v.getTagValidationDetails()[validationErrs[0].Tag()]
			if ok {
				return fmt.Errorf("%w for field '%s'", tagValidationDetails.err, validationErrs[0].Field())
			}

			switch validationErrs[0].Tag() {
			case "required":
				return fmt.Errorf("missing required field '%s'", validationErrs[0].Field())

			case "min", "max", "gte", "lte":
				return fmt.Errorf("value or length of field '%s' is not in the expected range", validationErrs[0].Field())

			}
		}
		return err
	}
	return nil
}

func (v *Validator) getTagValidationDetails() map[string]tagValidationDetails {
	v.tagValidationDetailsOnce.Do(func() {
		v.tagValidationDetailsMap = map[string]tagValidationDetails{
			"not_blank":  {validatorFunc: v.isNotBlank, err: errors.New("blank value")},
			"valid_enum": {validatorFunc: v.isValidEnum, err: errors.New("unsupported value")},
			"valid_url":  {validatorFunc: v.isValidURL, err: errors.New("invalid url")},
		}
	})
	return v.tagValidationDetailsMap
}

func (v *Validator) registerCustomValidatorsForTags() error {

	tagValidationDetailsMap := v.getTagValidationDetails()

	for tag, tagValidationDetails := range tagValidationDetailsMap {
		if err := v.validator.RegisterValidation(tag, tagValidationDetails.validatorFunc); err != nil {
			v.logger.Error("failed to register customer validator function", "err", err.Error())
			return err
		}
	}
	return nil
}

func useJSONFieldNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func (v *Validator) isNotBlank(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.TrimSpace(value) == "" {
		v.logger.Warn("value is blank", "field", fl.FieldName())
		return false
	}

	return true
}

func (v *Validator) isValidEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}
	value, ok := field.Interface().(enum)
	if !ok {
		v.logger.Error("valid_enum used on a field that is not an enum", "field", fl.FieldName())
		return false
	}

	return value.IsValid()
}

func (v *Validator) isValidURL(fl validator.FieldLevel) bool {
	rawURL := fl.Field().String()
	if len(rawURL) == 0 {
		return true
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		v.logger.Info("url could not be parsed", "url", rawURL, "err", err.Error())
		return false
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		v.logger.Info("url scheme is not allowed", "url", rawURL)
		return false
	}

	return parsedURL.Host != ""
}
