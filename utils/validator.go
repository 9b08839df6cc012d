package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var storeSlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func init() {
	// Store slugs become subdomains, so they are stricter than generic slugs
	_ = validate.RegisterValidation("storeslug", func(fl validator.FieldLevel) bool {
		return storeSlugPattern.MatchString(fl.Field().String())
	})
}

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	// Format validation errors
	var errors []string
	for _, err := range err.(validator.ValidationErrors) {
		field := strings.ToLower(err.Field())
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errors = append(errors, field+" is required")
		case "min":
			errors = append(errors, field+" must be at least "+param)
		case "max":
			errors = append(errors, field+" must be at most "+param)
		case "email":
			errors = append(errors, field+" must be a valid email")
		case "gt":
			errors = append(errors, field+" must be greater than "+param)
		case "gte":
			errors = append(errors, field+" must be at least "+param)
		case "lte":
			errors = append(errors, field+" must be at most "+param)
		case "oneof":
			errors = append(errors, field+" must be one of: "+param)
		case "storeslug":
			errors = append(errors, field+" may only contain lowercase letters, digits and hyphens")
		default:
			errors = append(errors, field+" is invalid")
		}
	}

	return fmt.Errorf(strings.Join(errors, ", "))
}
