package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/deck-hub/internal/apperror"
)

// maxBodySize caps request bodies at 1MB. Deck and folder payloads are tiny;
// anything larger is a mistake or abuse.
const maxBodySize = 1 << 20

// validate checks request structs against their `validate` tags. A single
// shared instance is the documented usage — it caches struct metadata.
var validate = validator.New()

// decodeJSON parses the request body into dst and runs struct validation.
// Any failure comes back as an apperror.ErrValidation the caller can pass
// straight to writeError.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON request body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return apperror.ValidationFailed("body", "invalid request")
		}
		first := verrs[0]
		field := strings.ToLower(first.Field())
		return apperror.ValidationFailed(field, validationMessage(field, first))
	}

	return nil
}

func validationMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
