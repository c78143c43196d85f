package validators

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Payload is a decoded request body: form fields or a JSON object.
type Payload map[string]any

// Rule describes the acceptance rules for a single field.
type Rule struct {
	Field    string
	Required bool
	// Nullable accepts an explicit null as "absent".
	Nullable bool
	// AllowEmpty accepts the raw empty string as "absent".
	AllowEmpty bool
	Trim       bool
	MinLen     int
	// MaxLen of zero means unbounded.
	MaxLen int
}

// Schema is an immutable, ordered set of field rules.
type Schema struct {
	name  string
	rules []Rule
}

// NewSchema builds a schema from the given rules. The rules are copied.
func NewSchema(name string, rules ...Rule) Schema {
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return Schema{name: name, rules: rs}
}

// Validate checks payload against every rule and returns the normalized payload.
// Fields not covered by a rule are dropped. All violations are reported together.
func (s Schema) Validate(payload Payload) (Payload, error) {
	out := Payload{}
	verr := &ValidationError{Schema: s.name}

	for _, r := range s.rules {
		raw, present := payload[r.Field]
		if present && raw == nil && r.Nullable {
			present = false
		}
		if !present || raw == nil {
			if r.Required {
				verr.add(r.Field, fmt.Sprintf("%q is required", r.Field))
			}
			continue
		}

		str, ok := raw.(string)
		if !ok {
			verr.add(r.Field, fmt.Sprintf("%q must be a string", r.Field))
			continue
		}
		if str == "" && r.AllowEmpty {
			continue
		}
		if r.Trim {
			str = strings.TrimSpace(str)
		}

		n := utf8.RuneCountInString(str)
		switch {
		case n == 0 && (r.Required || r.MinLen > 0):
			verr.add(r.Field, fmt.Sprintf("%q is not allowed to be empty", r.Field))
			continue
		case n < r.MinLen:
			verr.add(r.Field, fmt.Sprintf("%q length must be at least %d characters long", r.Field, r.MinLen))
			continue
		case r.MaxLen > 0 && n > r.MaxLen:
			verr.add(r.Field, fmt.Sprintf("%q length must be less than or equal to %d characters long", r.Field, r.MaxLen))
			continue
		}
		out[r.Field] = str
	}

	if len(verr.Violations) > 0 {
		return nil, verr
	}
	return out, nil
}

// FormPayload converts urlencoded or multipart form values into a Payload,
// keeping the first value of each key.
func FormPayload(values url.Values) Payload {
	p := make(Payload, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			p[k] = vs[0]
		}
	}
	return p
}

// String returns the normalized string value of field, or "" when absent.
func (p Payload) String(field string) string {
	s, _ := p[field].(string)
	return s
}

// OptionalString returns nil when field is absent.
func (p Payload) OptionalString(field string) *string {
	s, ok := p[field].(string)
	if !ok {
		return nil
	}
	return &s
}
