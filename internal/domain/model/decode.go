package model

import (
	"encoding/json"
	"reflect"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/joinify/joinify-go/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses a JSON body into T and checks the result against its
// validate tags. Slices are checked element by element. Any mismatch is
// returned as a parse error.
func Decode[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, apperrors.Parsef("decode %T: %v", out, err)
	}
	if err := Check(out); err != nil {
		return out, err
	}
	return out, nil
}

// Check validates v (a struct, pointer to struct, or slice of either).
func Check(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	var err error
	switch rv.Kind() {
	case reflect.Struct:
		err = validate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		err = validate.Var(rv.Interface(), "dive")
	default:
		return nil
	}
	if err != nil {
		return apperrors.Parsef("invalid %T: %v", v, err)
	}
	return nil
}
