// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/validate"
)

// ErrEmptyBody is returned when the request carries no body at all.
var ErrEmptyBody = errors.New("request body is empty")

func maxBodyBytes() int64 {
	n := int64(config.GetInt("MAX_BODY_BYTES", 1<<20))
	if n <= 0 {
		return 1 << 20
	}
	return n
}

// JSON decodes r.Body into dest and validates it. Unknown fields are
// rejected so typos in admin forms surface instead of being dropped.
//
// It returns (errs, nil) on validation failures and (nil, err) when the
// body is malformed, too large or empty.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) (validate.Errors, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyBody
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		default:
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}
