package forms

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// FieldErrorMap maps a field name to its message. "" means the field is valid.
type FieldErrorMap map[string]string

// Rule validates one field. Any failing check reports Message.
type Rule struct {
	Message string
	Checks  []validation.Rule
	// Verbatim skips trimming; passwords are checked as typed.
	Verbatim bool
}

// Field builds a Rule from ozzo-validation checks.
func Field(message string, checks ...validation.Rule) Rule {
	return Rule{Message: message, Checks: checks}
}

// Secret builds a Rule that checks the value without trimming it.
func Secret(message string, checks ...validation.Rule) Rule {
	return Rule{Message: message, Checks: checks, Verbatim: true}
}

// Check returns the message for value, or "" when value passes.
// Values are trimmed first unless the rule is Verbatim.
func (r Rule) Check(value string) string {
	if !r.Verbatim {
		value = strings.TrimSpace(value)
	}
	if err := validation.Validate(value, r.Checks...); err != nil {
		return r.Message
	}
	return ""
}

// Rules declares a form: one Rule per field.
type Rules map[string]Rule

// Engine keeps the error map of one form and gates its submission.
// It knows nothing about the fields beyond the rules it was given.
type Engine struct {
	rules  Rules
	errors FieldErrorMap
}

func NewEngine(rules Rules) *Engine {
	errors := make(FieldErrorMap, len(rules))
	for name := range rules {
		errors[name] = ""
	}
	return &Engine{rules: rules, errors: errors}
}

// OnFieldChange re-derives the message of the changed field only.
func (e *Engine) OnFieldChange(name, value string) FieldErrorMap {
	if rule, ok := e.rules[name]; ok {
		e.errors[name] = rule.Check(value)
	}
	return e.Errors()
}

// OnSubmitAttempt reports whether formData may be sent. Every ruled field is
// checked against formData (a missing field counts as empty), so an untouched
// form cannot slip through; submission is allowed only when every message in
// the resulting map is empty.
func (e *Engine) OnSubmitAttempt(formData map[string]string) bool {
	for name, rule := range e.rules {
		e.errors[name] = rule.Check(formData[name])
	}
	for _, msg := range e.errors {
		if msg != "" {
			return false
		}
	}
	return true
}

// SetError records a message that did not come from a rule, such as a
// rejected login.
func (e *Engine) SetError(name, message string) {
	e.errors[name] = message
}

// Errors returns a copy of the current error map.
func (e *Engine) Errors() FieldErrorMap {
	out := make(FieldErrorMap, len(e.errors))
	for k, v := range e.errors {
		out[k] = v
	}
	return out
}

// Valid reports whether no field carries a message.
func (e *Engine) Valid() bool {
	for _, msg := range e.errors {
		if msg != "" {
			return false
		}
	}
	return true
}

// Err returns a *ValidationError describing the current messages, or nil.
func (e *Engine) Err() error {
	if e.Valid() {
		return nil
	}
	fields := make(FieldErrorMap)
	for k, v := range e.errors {
		if v != "" {
			fields[k] = v
		}
	}
	return &ValidationError{Fields: fields}
}

// ValidationError blocks a submission locally. It never reaches the network.
type ValidationError struct {
	Fields FieldErrorMap
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}
