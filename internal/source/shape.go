package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrShapeTarget is returned when a decode target is not a non-nil pointer
var ErrShapeTarget = errors.New("shape decode target must be a non-nil pointer")

// Field is one property of a Shape
type Field struct {
	Name        string
	Type        string // string, number, boolean, array, object
	Description string
	Required    bool
	Items       *Shape // Element shape for arrays of objects
}

// Shape is a declarative result contract handed to a structured source
type Shape struct {
	Description string
	Fields      []Field
}

// Schema renders the shape as a JSON Schema object
func (s Shape) Schema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	var required []string

	for _, f := range s.Fields {
		prop := map[string]any{"type": f.Type}
		if f.Description != "" {
			prop["description"] = f.Description
		}
		if f.Type == "array" && f.Items != nil {
			prop["items"] = f.Items.Schema()
		}
		if f.Type == "object" && f.Items != nil {
			for k, v := range f.Items.Schema() {
				prop[k] = v
			}
		}
		props[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if s.Description != "" {
		schema["description"] = s.Description
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// JSON returns the schema as a JSON string
func (s Shape) JSON() (string, error) {
	data, err := json.Marshal(s.Schema())
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	return string(data), nil
}

// Satisfied reports whether raw is a JSON object carrying every required
// top-level field with a non-null value
func (s Shape) Satisfied(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	if len(obj) == 0 {
		return false
	}

	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		v, ok := obj[f.Name]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return false
		}
	}
	return true
}

// Decode unmarshals raw into out when raw satisfies the shape. It reports
// false without touching out when raw is unsatisfied or does not decode.
func (s Shape) Decode(raw []byte, out any) (bool, error) {
	if !s.Satisfied(raw) {
		return false, nil
	}
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, ErrShapeTarget
	}

	// Decode into a fresh value so a partial decode never leaks into out
	fresh := reflect.New(target.Elem().Type())
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(fresh.Interface()); err != nil {
		return false, fmt.Errorf("decode shaped result: %w", err)
	}
	target.Elem().Set(fresh.Elem())
	return true, nil
}

// PeopleShape is the person discovery contract: a list of {name, title}
var PeopleShape = Shape{
	Fields: []Field{{
		Name: "people",
		Type: "array",
		Description: "List of decision makers at this company. " +
			"Include: CEO, Owner, Founder, President, " +
			"VP/Director/Head of Operations/Fleet/Safety/Transportation/Logistics, " +
			"Hiring Manager, Recruiter, HR Director, Fleet Manager, " +
			"and any other senior leadership or management roles.",
		Required: true,
		Items: &Shape{Fields: []Field{
			{Name: "name", Type: "string", Description: "Full name of the person", Required: true},
			{
				Name: "title",
				Type: "string",
				Description: "Job title or role (e.g. CEO, Owner, VP Operations, " +
					"Head of Safety, Fleet Manager, Hiring Manager, HR Director)",
				Required: true,
			},
		}},
	}},
}

// PersonTitleShape asks for one person's title
var PersonTitleShape = Shape{
	Fields: []Field{{
		Name:        "title",
		Type:        "string",
		Description: "The person's job title or role at the company",
		Required:    true,
	}},
}
