// Package http provides the JSON API server and its handlers.
//
// This file implements request body and query decoding shared by the
// handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errInvalidBody is returned for bodies that are not a single JSON object.
var errInvalidBody = errors.New("invalid request body")

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// loginRequest is the POST /api/admin body. Password stays untyped so a
// non-string value is a wrong password rather than a malformed body.
type loginRequest struct {
	Password any `json:"password"`
}

// credential returns the password when it is a JSON string. present is false
// for absent, null, empty, false and zero values.
func (l loginRequest) credential() (password string, isString, present bool) {
	switch v := l.Password.(type) {
	case nil:
		return "", false, false
	case string:
		return v, true, v != ""
	case bool:
		return "", false, v
	case float64:
		return "", false, v != 0
	default:
		return "", false, true
	}
}

// deleteQuery is the DELETE /api/financial-data query string.
type deleteQuery struct {
	YearMonth string `schema:"yearMonth"`
}

// DecodeJSONBody reads one JSON value from the request body into dst.
// An empty body decodes to the zero value.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errInvalidBody)
	}
	return nil
}

// DecodeQuery decodes the URL query into dst using its schema tags.
func DecodeQuery(r *http.Request, dst any) error {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
