package httpx

import (
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Validation ───────────────────────────────────────────────────────────────

// RuleSet maps a field name to a pipe-separated rule string:
//
//	httpx.RuleSet{"email": "required|email", "age": "required|integer|min:18"}
type RuleSet map[string]string

// ValidationErrors collects per-field failure messages.
// JSON shape: {"errors": {"field": ["msg1", "msg2"]}}
type ValidationErrors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *ValidationErrors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Any reports whether any field failed.
func (e *ValidationErrors) Any() bool { return e != nil && len(e.Bag) > 0 }

// First returns the first message recorded for field, or "".
func (e *ValidationErrors) First(field string) string {
	if e == nil {
		return ""
	}
	if msgs := e.Bag[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Bag))
}

// Response renders the error bag as a 422.
func (e *ValidationErrors) Response() *Response {
	return JSON(http.StatusUnprocessableEntity, e)
}

// Validate checks data against rules. Fields stop at their first failing
// rule. A nil return means everything passed.
func Validate(data map[string]string, rules RuleSet) *ValidationErrors {
	errs := &ValidationErrors{}
	for field, ruleStr := range rules {
		value := data[field]
		for _, raw := range strings.Split(ruleStr, "|") {
			name, param, _ := strings.Cut(strings.TrimSpace(raw), ":")
			if name == "" {
				continue
			}
			check, ok := ruleTable[name]
			if !ok {
				continue
			}
			if msg := check(field, value, param, data); msg != "" {
				errs.add(field, msg)
				break
			}
		}
	}
	if !errs.Any() {
		return nil
	}
	return errs
}

// Validate decodes the JSON body into a flat string map and checks it
// against rules. Nested values are ignored; numbers and booleans are
// stringified so length and comparison rules apply uniformly.
func (req *Request) Validate(rules RuleSet) (map[string]string, *ValidationErrors) {
	data, err := req.bodyMap()
	if err != nil {
		errs := &ValidationErrors{}
		errs.add("_body", "The request body must be a JSON object.")
		return nil, errs
	}
	return data, Validate(data, rules)
}

// Input returns a top-level body field as a string, or "" when the body is
// absent, not an object, or the field is missing.
func (req *Request) Input(key string) string {
	data, err := req.bodyMap()
	if err != nil {
		return ""
	}
	return data[key]
}

func (req *Request) bodyMap() (map[string]string, error) {
	var raw map[string]any
	if err := req.Bind(&raw); err != nil {
		return nil, err
	}
	data := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			data[k] = t
		case float64:
			data[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			data[k] = strconv.FormatBool(t)
		}
	}
	return data, nil
}

// ── Rules ────────────────────────────────────────────────────────────────────

// ruleFn returns "" on pass, or the failure message.
type ruleFn func(field, value, param string, data map[string]string) string

var (
	urlRe      = regexp.MustCompile(`^https?://`)
	alphaNumRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

var ruleTable = map[string]ruleFn{
	"required": func(field, value, _ string, _ map[string]string) string {
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	},
	"numeric": func(field, value, _ string, _ map[string]string) string {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Sprintf("The %s must be a number.", field)
		}
		return ""
	},
	"integer": func(field, value, _ string, _ map[string]string) string {
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Sprintf("The %s must be an integer.", field)
		}
		return ""
	},
	"boolean": func(field, value, _ string, _ map[string]string) string {
		switch strings.ToLower(value) {
		case "true", "false", "1", "0":
			return ""
		}
		return fmt.Sprintf("The %s field must be true or false.", field)
	},
	"email": func(field, value, _ string, _ map[string]string) string {
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
		return ""
	},
	"url": func(field, value, _ string, _ map[string]string) string {
		if !urlRe.MatchString(value) {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
		return ""
	},
	"alpha_num": func(field, value, _ string, _ map[string]string) string {
		if !alphaNumRe.MatchString(value) {
			return fmt.Sprintf("The %s may only contain letters and numbers.", field)
		}
		return ""
	},
	"min": func(field, value, param string, _ map[string]string) string {
		n, _ := strconv.Atoi(param)
		if isNumber(value) {
			if f, _ := strconv.ParseFloat(value, 64); f < float64(n) {
				return fmt.Sprintf("The %s must be at least %d.", field, n)
			}
			return ""
		}
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("The %s must be at least %d characters.", field, n)
		}
		return ""
	},
	"max": func(field, value, param string, _ map[string]string) string {
		n, _ := strconv.Atoi(param)
		if isNumber(value) {
			if f, _ := strconv.ParseFloat(value, 64); f > float64(n) {
				return fmt.Sprintf("The %s may not be greater than %d.", field, n)
			}
			return ""
		}
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("The %s may not be greater than %d characters.", field, n)
		}
		return ""
	},
	"between": func(field, value, param string, _ map[string]string) string {
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		min, _ := strconv.Atoi(strings.TrimSpace(lo))
		max, _ := strconv.Atoi(strings.TrimSpace(hi))
		l := utf8.RuneCountInString(value)
		if l < min || l > max {
			return fmt.Sprintf("The %s must be between %d and %d characters.", field, min, max)
		}
		return ""
	},
	"in": func(field, value, param string, _ map[string]string) string {
		for _, allowed := range strings.Split(param, ",") {
			if strings.TrimSpace(allowed) == value {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	},
	"regex": func(field, value, param string, _ map[string]string) string {
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
		return ""
	},
	"confirmed": func(field, value, _ string, data map[string]string) string {
		if data[field+"_confirmation"] != value {
			return fmt.Sprintf("The %s confirmation does not match.", field)
		}
		return ""
	},
	"same": func(field, value, param string, data map[string]string) string {
		if data[param] != value {
			return fmt.Sprintf("The %s and %s must match.", field, param)
		}
		return ""
	},
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
