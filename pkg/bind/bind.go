// Package bind reads a JSON request body into a struct and validates it.
// Bodies are capped at MAX_BODY_BYTES (64 KB by default), must hold exactly
// one JSON object, and may not carry fields the struct does not declare.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/pkg/validate"
)

const defaultMaxBody = 64 << 10

// ErrEmptyBody is returned when the request carries no JSON at all.
var ErrEmptyBody = errors.New("request body is empty")

func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", ""), 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxBody
	}
	return n
}

// JSON decodes r.Body into dest and runs validate.Struct on it.
//
// A malformed body yields (nil, err). A well-formed body that fails
// validation yields (field errors, nil).
func JSON(r *http.Request, dest any) (map[string]string, error) {
	limit := maxBodyBytes()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limit))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		return nil, decodeError(err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: body must contain a single object")
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

func decodeError(err error) error {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		return fmt.Errorf("request body too large (max %d bytes)", tooBig.Limit)
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	default:
		return fmt.Errorf("invalid JSON: %w", err)
	}
}
