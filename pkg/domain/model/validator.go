package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const MinPasswordLength = 8

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return goerr.Wrap(ErrMissingRequired, "field is empty", goerr.V(FieldKey, field))
	}
	return nil
}

// Validate checks the fields of a risk before it is stored
func (r *Risk) Validate() error {
	if err := requireText("title", r.Title); err != nil {
		return err
	}
	if len(r.Title) > MaxRiskTitleLength {
		return goerr.Wrap(ErrValueTooLong, "title is too long",
			goerr.V(FieldKey, "title"),
			goerr.V(MaxLengthKey, MaxRiskTitleLength))
	}
	if r.OwnerID == "" {
		return goerr.Wrap(ErrMissingRequired, "owner is required", goerr.V(FieldKey, "owner_id"))
	}
	if !r.Status.IsValid() {
		return goerr.Wrap(ErrInvalidValue, "invalid status",
			goerr.V(FieldKey, "status"), goerr.V(FieldValueKey, r.Status))
	}
	if !r.Severity.IsValid() {
		return goerr.Wrap(ErrInvalidValue, "invalid severity",
			goerr.V(FieldKey, "severity"), goerr.V(FieldValueKey, r.Severity))
	}
	if r.CategoryID != nil {
		if err := r.CategoryID.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidValue, "invalid category id",
				goerr.V(FieldKey, "category_id"), goerr.V(FieldValueKey, *r.CategoryID))
		}
	}
	return nil
}

// Validate checks the fields of a mitigation before it is stored
func (m *Mitigation) Validate() error {
	if m.RiskID == "" {
		return goerr.Wrap(ErrMissingRequired, "risk is required", goerr.V(FieldKey, "risk_id"))
	}
	if err := requireText("description", m.Description); err != nil {
		return err
	}
	if err := requireText("owner", m.Owner); err != nil {
		return err
	}
	if !m.Status.IsValid() {
		return goerr.Wrap(ErrInvalidValue, "invalid mitigation status",
			goerr.V(FieldKey, "status"), goerr.V(FieldValueKey, m.Status))
	}
	return nil
}

// Validate checks the fields of a category
func (c *Category) Validate() error {
	if err := c.ID.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidValue, "invalid category id",
			goerr.V(FieldKey, "id"), goerr.V(FieldValueKey, c.ID))
	}
	return requireText("name", c.Name)
}

// Validate checks the fields of a framework
func (f *Framework) Validate() error {
	return requireText("name", f.Name)
}

// Validate checks the fields of a control mapping
func (c *ControlMapping) Validate() error {
	if c.RiskID == "" {
		return goerr.Wrap(ErrMissingRequired, "risk is required", goerr.V(FieldKey, "risk_id"))
	}
	if c.FrameworkID == "" {
		return goerr.Wrap(ErrMissingRequired, "framework is required", goerr.V(FieldKey, "framework_id"))
	}
	return requireText("control_ref", c.ControlRef)
}

// Validate checks the fields of a user. The password hash is checked by
// the caller since the plain password never reaches the model.
func (u *User) Validate() error {
	if err := requireText("email", u.Email); err != nil {
		return err
	}
	if !strings.Contains(u.Email, "@") {
		return goerr.Wrap(ErrInvalidValue, "invalid email",
			goerr.V(FieldKey, "email"), goerr.V(FieldValueKey, u.Email))
	}
	if err := requireText("name", u.Name); err != nil {
		return err
	}
	if !u.Role.IsValid() {
		return goerr.Wrap(ErrInvalidValue, "invalid role",
			goerr.V(FieldKey, "role"), goerr.V(FieldValueKey, u.Role))
	}
	return nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339. An empty string returns nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidDate, "date must be YYYY-MM-DD or RFC3339",
			goerr.V(FieldValueKey, s))
	}
	return &t, nil
}
