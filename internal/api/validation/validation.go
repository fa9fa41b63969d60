// Package validation holds field-level rules shared by request binding and
// the service layer.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ReservedUsername is the path segment of the current-user endpoint.
const ReservedUsername = "me"

var (
	ErrReservedUsername = errors.New("this username is reserved")
	ErrUsernameFormat   = errors.New("username may contain only letters, digits and @/./+/-/_")
	ErrColorFormat      = errors.New("color must be a hex code like #E26C2D")
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	colorPattern    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
)

// Username checks the rules that apply to every username.
func Username(value string) error {
	if value == ReservedUsername {
		return ErrReservedUsername
	}
	if !usernamePattern.MatchString(value) {
		return ErrUsernameFormat
	}
	return nil
}

// Color checks a tag color.
func Color(value string) error {
	if !colorPattern.MatchString(value) {
		return ErrColorFormat
	}
	return nil
}

// Register installs the custom "username" tag on gin's validator and makes
// field errors report json names.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return Username(fl.Field().String()) == nil
	})
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}
