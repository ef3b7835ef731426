package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"defecttracker/internal/domain"
)

const (
	titleMin       = 3
	titleMax       = 100
	descriptionMin = 10
	descriptionMax = 2000
)

type CreateDefectRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	AssignedTo  *int64          `json:"assigned_to"`
	Tags        []string        `json:"tags"`
	Attachments []string        `json:"attachments"`
}

// UnmarshalJSON also accepts the camelCase assignedTo key.
func (r *CreateDefectRequest) UnmarshalJSON(data []byte) error {
	type plain CreateDefectRequest
	var aux struct {
		plain
		AssignedToCamel *int64 `json:"assignedTo"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CreateDefectRequest(aux.plain)
	if r.AssignedTo == nil {
		r.AssignedTo = aux.AssignedToCamel
	}
	return nil
}

func (r CreateDefectRequest) Validate() error {
	if err := checkTitle(r.Title); err != nil {
		return err
	}
	if err := checkDescription(r.Description); err != nil {
		return err
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: severity must be one of low, medium, high, critical", domain.ErrValidation)
	}
	if r.AssignedTo != nil && *r.AssignedTo <= 0 {
		return fmt.Errorf("%w: assigned_to must be a positive integer", domain.ErrValidation)
	}
	for _, u := range r.Attachments {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("%w: attachment url must not be empty", domain.ErrValidation)
		}
	}
	return nil
}

func (r CreateDefectRequest) ToDomain() domain.NewDefect {
	return domain.NewDefect{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Severity:    r.Severity,
		AssignedTo:  r.AssignedTo,
		Tags:        r.Tags,
		Attachments: r.Attachments,
	}
}

// UpdateDefectRequest keeps key presence so omitted fields stay untouched.
type UpdateDefectRequest struct {
	domain.DefectPatch
}

func (r *UpdateDefectRequest) UnmarshalJSON(data []byte) error {
	var aux struct {
		domain.DefectPatch
		AssignedToCamel domain.Field[*int64] `json:"assignedTo"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.DefectPatch = aux.DefectPatch
	if !r.AssignedTo.Set {
		r.AssignedTo = aux.AssignedToCamel
	}
	r.Title.Value = strings.TrimSpace(r.Title.Value)
	r.Description.Value = strings.TrimSpace(r.Description.Value)
	return nil
}

func (r UpdateDefectRequest) Validate() error {
	p := r.DefectPatch
	if p.Title.Set {
		if err := checkTitle(p.Title.Value); err != nil {
			return err
		}
	}
	if p.Description.Set {
		if err := checkDescription(p.Description.Value); err != nil {
			return err
		}
	}
	if p.Severity.Set && !p.Severity.Value.Valid() {
		return fmt.Errorf("%w: severity must be one of low, medium, high, critical", domain.ErrValidation)
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		return fmt.Errorf("%w: status must be one of open, in_progress, resolved, closed", domain.ErrValidation)
	}
	if p.AssignedTo.Set && p.AssignedTo.Value != nil && *p.AssignedTo.Value <= 0 {
		return fmt.Errorf("%w: assigned_to must be a positive integer", domain.ErrValidation)
	}
	return nil
}

func checkTitle(s string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	if n < titleMin || n > titleMax {
		return fmt.Errorf("%w: title must be between %d and %d characters", domain.ErrValidation, titleMin, titleMax)
	}
	return nil
}

func checkDescription(s string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	if n < descriptionMin || n > descriptionMax {
		return fmt.Errorf("%w: description must be between %d and %d characters", domain.ErrValidation, descriptionMin, descriptionMax)
	}
	return nil
}
