package booking

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"cinewatch/internal/storage"
)

type InfringementSaver interface {
	SaveInfringementReport(ctx context.Context, r *storage.InfringementReport) error
}

// InfringementForm is the three-step infringement report: claimant, work,
// declaration.
type InfringementForm struct {
	Step          int
	Name          string
	Email         string
	Organization  string
	WorkTitle     string
	Description   string
	InfringingURL string
	GoodFaith     bool
	Accurate      bool
	Signature     string
	Submitted     bool
}

func NewInfringementForm() *InfringementForm {
	return &InfringementForm{Step: 1}
}

// Fill copies the fields present in values onto f. The declaration
// checkboxes are only read on the last step.
func (f *InfringementForm) Fill(get func(string) string, has func(string) bool) {
	set := func(dst *string, key string) {
		if has(key) {
			*dst = strings.TrimSpace(get(key))
		}
	}
	set(&f.Name, "name")
	set(&f.Email, "email")
	set(&f.Organization, "organization")
	set(&f.WorkTitle, "work_title")
	set(&f.Description, "description")
	set(&f.InfringingURL, "infringing_url")
	set(&f.Signature, "signature")
	if f.Step == LastStep {
		f.GoodFaith = get("good_faith") != ""
		f.Accurate = get("accurate") != ""
	}
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate checks the required fields of step.
func (f *InfringementForm) Validate(step int) error {
	switch step {
	case 1:
		if f.Name == "" {
			return stepErr(1, "Please enter your full name.")
		}
		if _, err := mail.ParseAddress(f.Email); err != nil {
			return stepErr(1, "Please enter a valid email address.")
		}
	case 2:
		if f.WorkTitle == "" {
			return stepErr(2, "Please name the copyrighted work.")
		}
		if f.Description == "" {
			return stepErr(2, "Please describe the infringement.")
		}
		if !validURL(f.InfringingURL) {
			return stepErr(2, "Please enter the full URL of the infringing material.")
		}
	case 3:
		if !f.GoodFaith || !f.Accurate {
			return stepErr(3, "Please confirm both statements.")
		}
		if !strings.EqualFold(f.Signature, f.Name) {
			return stepErr(3, "Please sign with your full name.")
		}
	default:
		return stepErr(step, "Unknown step.")
	}
	return nil
}

func (f *InfringementForm) Next() error {
	if err := f.Validate(f.Step); err != nil {
		return err
	}
	if f.Step < LastStep {
		f.Step++
	}
	return nil
}

func (f *InfringementForm) Back() {
	if f.Step > 1 {
		f.Step--
	}
}

// Submit validates every step and persists the report.
func (f *InfringementForm) Submit(ctx context.Context, saver InfringementSaver) (*storage.InfringementReport, error) {
	if f.Submitted {
		return nil, stepErr(LastStep, "This report was already sent.")
	}
	for step := 1; step <= LastStep; step++ {
		if err := f.Validate(step); err != nil {
			f.Step = step
			return nil, err
		}
	}

	report := &storage.InfringementReport{
		ID:            uuid.NewString(),
		Name:          f.Name,
		Email:         f.Email,
		Organization:  f.Organization,
		WorkTitle:     f.WorkTitle,
		Description:   f.Description,
		InfringingURL: f.InfringingURL,
		Signature:     f.Signature,
	}
	if saver != nil {
		if err := saver.SaveInfringementReport(ctx, report); err != nil {
			return nil, fmt.Errorf("saving infringement report: %w", err)
		}
	}
	f.Submitted = true
	return report, nil
}
