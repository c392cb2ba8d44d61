// This file parses request bodies and query strings. Admin forms post
// either JSON or url-encoded data; both are read through the same parser.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"schoolsite/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// RequestBodyParser reads a JSON or form body once and exposes its fields
// as trimmed strings.
type RequestBodyParser struct {
	jsonData map[string]any
	formData url.Values
}

// ParseRequestBody reads and decodes the body of r. A body starting with
// '{' is JSON; anything else is url-encoded form data.
func ParseRequestBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidRecord, err)
	}
	p := &RequestBodyParser{}
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		p.formData = url.Values{}
	case trimmed[0] == '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			return nil, fmt.Errorf("%w: malformed JSON: %v", core.ErrInvalidRecord, err)
		}
	case trimmed[0] == '[':
		return nil, fmt.Errorf("%w: expected a JSON object", core.ErrInvalidRecord)
	default:
		form, err := url.ParseQuery(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed form: %v", core.ErrInvalidRecord, err)
		}
		p.formData = form
	}
	return p, nil
}

// Get returns the field as a sanitized string, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	return sanitizeInput(p.formData.Get(key))
}

// GetAmount returns the field as a fee amount. JSON numbers are read as
// numbers, so 1e3 is 1000; strings and form values use the lenient digit
// parser.
func (p *RequestBodyParser) GetAmount(key string) core.Amount {
	if p.jsonData != nil {
		if n, ok := p.jsonData[key].(json.Number); ok {
			return core.ParseNumberAmount(n)
		}
	}
	return core.ParseAmountValue(p.Get(key))
}

// Has reports whether the field is present with a non-empty value.
func (p *RequestBodyParser) Has(key string) bool {
	return p.Get(key) != ""
}

// GetList returns a list field. JSON arrays are used as they are; a form
// or JSON string is split on commas. Blank entries are dropped.
func (p *RequestBodyParser) GetList(key string) []string {
	var raw []string
	if p.jsonData != nil {
		switch v := p.jsonData[key].(type) {
		case []any:
			for _, item := range v {
				raw = append(raw, stringValue(item))
			}
		case string:
			raw = strings.Split(v, ",")
		}
	} else {
		for _, v := range p.formData[key] {
			raw = append(raw, strings.Split(v, ",")...)
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = sanitizeInput(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// IsJSON reports whether the body was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// parseBool accepts the usual checkbox spellings.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	}
	return false, errors.New("not a boolean")
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", core.ErrInvalidRecord)
	}
	return id, nil
}

// queryInt returns the integer query parameter, or def when absent or
// malformed.
func queryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil {
		return def
	}
	return v
}
