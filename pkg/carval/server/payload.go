package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
)

var errNotNumeric = errors.New("not a number")

// payload is a JSON object body whose fields are decoded on demand, so that
// numbers may arrive either as JSON numbers or as numeric strings.
type payload map[string]json.RawMessage

// decodePayload rejects empty, non-object and empty-object bodies.
func decodePayload(r *http.Request) (payload, error) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || len(p) == 0 {
		return nil, apperr.NewValidationError("No data provided")
	}
	return p, nil
}

func (p payload) present(key string) bool {
	raw, ok := p[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// truthy reports whether key holds something other than null, false, zero
// or an empty string, array or object.
func (p payload) truthy(key string) bool {
	if !p.present(key) {
		return false
	}
	raw := bytes.TrimSpace(p[key])
	switch string(raw) {
	case "false", `""`, "[]", "{}":
		return false
	}
	if isString(raw) {
		return true
	}
	f, err := p.float(key)
	return err != nil || f != 0
}

func isString(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '"'
}

// str returns the trimmed string value of key, or "" if it is not a string.
func (p payload) str(key string) string {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// integer accepts a JSON number (truncated) or a string holding an integer.
func (p payload) integer(key string) (int, error) {
	raw := bytes.TrimSpace(p[key])

	if isString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, errNotNumeric
		}
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, errNotNumeric
		}
		return i, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errNotNumeric
	}
	if i, err := n.Int64(); err == nil && i >= math.MinInt32 && i <= math.MaxInt32 {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || math.Abs(f) > math.MaxInt32 {
		return 0, errNotNumeric
	}
	return int(f), nil
}

// float accepts a JSON number or a numeric string.
func (p payload) float(key string) (float64, error) {
	raw := bytes.TrimSpace(p[key])

	if !isString(raw) {
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, errNotNumeric
		}
		return f, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errNotNumeric
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	return f, nil
}
