package models

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// FieldKind is the closed set of input kinds the student profile form is
// composed of. Each kind owns its parsing and validation so a new kind can
// only be added here, together with its behavior.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldPhone    FieldKind = "phone"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
	FieldRadio    FieldKind = "radio"
	FieldCurrency FieldKind = "currency"
	FieldURL      FieldKind = "url"
	FieldRating   FieldKind = "rating"
	FieldTags     FieldKind = "tags"
)

var phonePattern = regexp.MustCompile(`^[0-9+()\-\s]{7,20}$`)

// FormField describes a single profile form input and how to validate it.
type FormField struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// Options constrains select and radio kinds to a fixed value set.
	Options []string `json:"options,omitempty"`
	// Max bounds the rating kind; ratings run from 1 to Max.
	Max int `json:"max,omitempty"`
}

// Validate checks raw against the field's kind. Empty values pass unless the
// field is required.
func (f FormField) Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		if f.Required {
			return fmt.Errorf("%s is required", f.Name)
		}
		return nil
	}
	switch f.Kind {
	case FieldText:
		return nil
	case FieldEmail:
		if _, err := mail.ParseAddress(raw); err != nil {
			return fmt.Errorf("%s is not a valid email address", f.Name)
		}
	case FieldPhone:
		if !phonePattern.MatchString(raw) {
			return fmt.Errorf("%s is not a valid phone number", f.Name)
		}
	case FieldSelect, FieldRadio:
		for _, opt := range f.Options {
			if opt == raw {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %s", f.Name, strings.Join(f.Options, ", "))
	case FieldCheckbox:
		if _, err := strconv.ParseBool(raw); err != nil {
			return fmt.Errorf("%s must be true or false", f.Name)
		}
	case FieldCurrency:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("%s must be a non-negative amount", f.Name)
		}
	case FieldURL:
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not a valid URL", f.Name)
		}
	case FieldRating:
		max := f.Max
		if max == 0 {
			max = 5
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > max {
			return fmt.Errorf("%s must be between 1 and %d", f.Name, max)
		}
	case FieldTags:
		// Comma-separated list; individual tags must be non-empty.
		for _, tag := range strings.Split(raw, ",") {
			if strings.TrimSpace(tag) == "" {
				return fmt.Errorf("%s contains an empty tag", f.Name)
			}
		}
	default:
		return fmt.Errorf("unsupported field kind %q", f.Kind)
	}
	return nil
}

// ParseTags splits a tags value into trimmed entries, dropping empties.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// StudentProfileFields is the canonical form layout for student create and
// edit screens. Handlers expose it so clients can render the form without
// duplicating the schema.
var StudentProfileFields = []FormField{
	{Name: "first_name", Label: "First Name", Kind: FieldText, Required: true},
	{Name: "last_name", Label: "Last Name", Kind: FieldText, Required: true},
	{Name: "email", Label: "Email", Kind: FieldEmail, Required: true},
	{Name: "phone", Label: "Phone", Kind: FieldPhone},
	{Name: "grade_level", Label: "Grade Level", Kind: FieldSelect, Required: true, Options: GradeLevels},
	{Name: "status", Label: "Status", Kind: FieldRadio, Required: true, Options: []string{string(StudentStatusActive), string(StudentStatusInactive)}},
	{Name: "newsletter", Label: "Subscribe to Newsletter", Kind: FieldCheckbox},
	{Name: "terms_agreed", Label: "Terms Agreed", Kind: FieldCheckbox, Required: true},
	{Name: "tuition_fee", Label: "Tuition Fee", Kind: FieldCurrency},
	{Name: "scholarship_amount", Label: "Scholarship Amount", Kind: FieldCurrency},
	{Name: "study_mode", Label: "Study Mode", Kind: FieldRadio, Options: []string{string(StudyModeOnline), string(StudyModeOffline)}},
	{Name: "study_type", Label: "Study Type", Kind: FieldSelect, Options: []string{string(StudyTypeFullTime), string(StudyTypePartTime)}},
	{Name: "website", Label: "Website", Kind: FieldURL},
	{Name: "social_profile", Label: "Social Profile", Kind: FieldURL},
	{Name: "satisfaction_rating", Label: "Satisfaction Rating", Kind: FieldRating, Max: 5},
	{Name: "instructor_rating", Label: "Instructor Rating", Kind: FieldRating, Max: 5},
	{Name: "interests", Label: "Interests", Kind: FieldTags},
	{Name: "skills", Label: "Skills", Kind: FieldTags},
}
