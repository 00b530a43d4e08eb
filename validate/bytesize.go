package validate

import (
	"reflect"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/kballard/go-shellquote"
)

// validateByteSize checks if a string can be parsed as a byte size.
func validateByteSize(fl validator.FieldLevel) bool {
	s := getStringValue(fl.Field())
	if s == "" || s == "0" {
		return true // empty/zero = no limit
	}

	_, err := humanize.ParseBytes(s)

	return err == nil
}

// validateByteSizeMax validates maximum byte size.
// Tag usage: bytesizemax=64MiB
func validateByteSizeMax(fl validator.FieldLevel) bool {
	s := getStringValue(fl.Field())
	if s == "" || s == "0" {
		return true
	}

	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return false
	}

	maxBytes, err := humanize.ParseBytes(fl.Param())
	if err != nil {
		return false
	}

	return bytes <= maxBytes
}

// validateShellWords checks that a string splits into words under shell quoting rules.
func validateShellWords(fl validator.FieldLevel) bool {
	_, err := shellquote.Split(getStringValue(fl.Field()))

	return err == nil
}

func getStringValue(field reflect.Value) string {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return ""
		}

		return field.Elem().String()
	}

	return field.String()
}
