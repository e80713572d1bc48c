package builder

import (
	"fmt"
	"net/url"
	"strings"
)

// Relation declares a hasMany or belongsTo association.
//
// In configuration files:
//
//	hasMany:
//	  - fields: id
//	    model: RobotsParts
//	    relationFields: robots_id
//	    options:
//	      reusable: true
type Relation struct {
	Fields         string         `json:"fields" yaml:"fields" toml:"fields" mapstructure:"fields"`
	Model          string         `json:"model" yaml:"model" toml:"model" mapstructure:"model"`
	RelationFields string         `json:"relationFields" yaml:"relationFields" toml:"relationFields" mapstructure:"relationFields"`
	Options        map[string]any `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty" mapstructure:"options,omitempty"`
}

// ParseRelation parses the CLI form of a relation declaration:
//
//	fields:Model:relationFields[?key=value&key=value]
//
// Option values "true" and "false" become booleans.
func ParseRelation(s string) (Relation, error) {
	decl, query, _ := strings.Cut(strings.TrimSpace(s), "?")
	parts := strings.Split(decl, ":")
	if len(parts) != 3 {
		return Relation{}, fmt.Errorf("%w: relation %q must look like fields:Model:relationFields", ErrConfiguration, s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return Relation{}, fmt.Errorf("%w: relation %q has an empty part", ErrConfiguration, s)
		}
	}
	r := Relation{
		Fields:         parts[0],
		Model:          parts[1],
		RelationFields: parts[2],
	}
	if query == "" {
		return r, nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return Relation{}, fmt.Errorf("%w: relation %q options: %v", ErrConfiguration, s, err)
	}
	r.Options = make(map[string]any, len(values))
	for k, vs := range values {
		v := vs[len(vs)-1]
		switch v {
		case "true":
			r.Options[k] = true
		case "false":
			r.Options[k] = false
		default:
			r.Options[k] = v
		}
	}
	return r, nil
}
