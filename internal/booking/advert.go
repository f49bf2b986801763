package booking

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinewatch/internal/storage"
	"cinewatch/internal/support"
)

type AdSaver interface {
	SaveAdRequest(ctx context.Context, a *storage.AdRequest) error
}

// AdForm is the three-step advertising enquiry: contact, campaign, terms.
type AdForm struct {
	packages []support.AdPackage

	Step        int
	Package     string
	Name        string
	Email       string
	Company     string
	Phone       string
	StartDate   string
	Budget      string
	Message     string
	AcceptTerms bool
	Submitted   bool
}

func NewAdForm(packages []support.AdPackage, pkg string) *AdForm {
	return &AdForm{packages: packages, Step: 1, Package: pkg}
}

// Fill copies the fields present in values onto f. Checkbox "terms" is
// only read on step 3.
func (f *AdForm) Fill(get func(string) string, has func(string) bool) {
	set := func(dst *string, key string) {
		if has(key) {
			*dst = strings.TrimSpace(get(key))
		}
	}
	set(&f.Package, "package")
	set(&f.Name, "name")
	set(&f.Email, "email")
	set(&f.Company, "company")
	set(&f.Phone, "phone")
	set(&f.StartDate, "start_date")
	set(&f.Budget, "budget")
	set(&f.Message, "message")
	if f.Step == LastStep {
		f.AcceptTerms = get("terms") != ""
	}
}

func (f *AdForm) knownPackage() bool {
	for _, p := range f.packages {
		if strings.EqualFold(p.Name, f.Package) {
			return true
		}
	}
	return false
}

// Validate checks the required fields of step.
func (f *AdForm) Validate(step int) error {
	switch step {
	case 1:
		if f.Name == "" {
			return stepErr(1, "Please enter your name.")
		}
		if _, err := mail.ParseAddress(f.Email); err != nil {
			return stepErr(1, "Please enter a valid email address.")
		}
		if f.Company == "" {
			return stepErr(1, "Please enter your company name.")
		}
	case 2:
		if !f.knownPackage() {
			return stepErr(2, "Please choose an advertising package.")
		}
		if _, err := time.Parse("2006-01-02", f.StartDate); err != nil {
			return stepErr(2, "Please enter a campaign start date.")
		}
		if f.Budget == "" {
			return stepErr(2, "Please enter your budget.")
		}
	case 3:
		if !f.AcceptTerms {
			return stepErr(3, "Please accept the terms to continue.")
		}
	default:
		return stepErr(step, "Unknown step.")
	}
	return nil
}

func (f *AdForm) Next() error {
	if err := f.Validate(f.Step); err != nil {
		return err
	}
	if f.Step < LastStep {
		f.Step++
	}
	return nil
}

func (f *AdForm) Back() {
	if f.Step > 1 {
		f.Step--
	}
}

// Submit validates the final step and persists the request.
func (f *AdForm) Submit(ctx context.Context, saver AdSaver) (*storage.AdRequest, error) {
	if f.Submitted {
		return nil, stepErr(LastStep, "This request was already sent.")
	}
	for step := 1; step <= LastStep; step++ {
		if err := f.Validate(step); err != nil {
			f.Step = step
			return nil, err
		}
	}

	req := &storage.AdRequest{
		ID:        uuid.NewString(),
		Package:   f.Package,
		Name:      f.Name,
		Email:     f.Email,
		Company:   f.Company,
		Phone:     f.Phone,
		StartDate: f.StartDate,
		Budget:    f.Budget,
		Message:   f.Message,
	}
	if saver != nil {
		if err := saver.SaveAdRequest(ctx, req); err != nil {
			return nil, fmt.Errorf("saving ad request: %w", err)
		}
	}
	f.Submitted = true
	return req, nil
}
