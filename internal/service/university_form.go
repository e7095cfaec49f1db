package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/unitrack-api/internal/models"
	appErrors "github.com/noah-isme/unitrack-api/pkg/errors"
)

// FormRedirect is where a successful submission sends the user.
const FormRedirect = "/dashboard"

// NumericInput holds a numeric form field as typed. It accepts a JSON
// number, a numeric string or null, and is parsed after validation.
type NumericInput struct {
	raw string
	set bool
}

// NumericFromFloat builds an input from a stored float.
func NumericFromFloat(v float64) NumericInput {
	return NumericInput{raw: strconv.FormatFloat(v, 'f', -1, 64), set: true}
}

// NumericFromDecimal builds an input from a stored decimal.
func NumericFromDecimal(v decimal.Decimal) NumericInput {
	return NumericInput{raw: v.String(), set: true}
}

// NumericFromString builds an input from raw text; blank means unset.
func NumericFromString(raw string) NumericInput {
	raw = strings.TrimSpace(raw)
	return NumericInput{raw: raw, set: raw != ""}
}

// IsSet reports whether a value was supplied.
func (n NumericInput) IsSet() bool { return n.set }

// String returns the raw text.
func (n NumericInput) String() string { return n.raw }

// Float64 parses the input.
func (n NumericInput) Float64() (float64, error) {
	return strconv.ParseFloat(n.raw, 64)
}

// Decimal parses the input without float rounding.
func (n NumericInput) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(n.raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumericInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = NumericInput{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericFromString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("expected number or string, got %s", data)
	}
	*n = NumericInput{raw: num.String(), set: true}
	return nil
}

// MarshalJSON renders set values as JSON numbers and unset ones as null.
func (n NumericInput) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(n.raw, 64); err != nil {
		return json.Marshal(n.raw)
	}
	return []byte(n.raw), nil
}

// UniversityDraft mirrors the add/edit form inputs.
type UniversityDraft struct {
	Name                  string                   `json:"name" validate:"required,max=200"`
	Country               string                   `json:"country" validate:"required,max=100"`
	Deadline              string                   `json:"deadline" validate:"required,datetime=2006-01-02"`
	ScholarshipPercentage NumericInput             `json:"scholarship_percentage" validate:"required,numeric"`
	ApplicationFees       NumericInput             `json:"application_fees" validate:"required,numeric"`
	Notes                 string                   `json:"notes" validate:"max=5000"`
	Status                models.ApplicationStatus `json:"status" validate:"omitempty,application_status"`
}

// DraftFromUniversity fills a draft with a stored record's values.
func DraftFromUniversity(u *models.University) UniversityDraft {
	return UniversityDraft{
		Name:                  u.Name,
		Country:               u.Country,
		Deadline:              u.Deadline.String(),
		ScholarshipPercentage: NumericFromFloat(u.ScholarshipPercentage),
		ApplicationFees:       NumericFromDecimal(u.ApplicationFees),
		Notes:                 u.Notes,
		Status:                u.Status,
	}
}

func (d *UniversityDraft) normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Country = strings.TrimSpace(d.Country)
	d.Deadline = strings.TrimSpace(d.Deadline)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Status == "" {
		d.Status = models.DefaultStatus
	}
}

// changes is the parse-to-number step run after tag validation.
func (d UniversityDraft) changes() (models.UniversityChanges, error) {
	deadline, err := models.ParseDate(d.Deadline)
	if err != nil {
		return models.UniversityChanges{}, fieldError("deadline must be a date in YYYY-MM-DD format")
	}
	scholarship, err := d.ScholarshipPercentage.Float64()
	if err != nil {
		return models.UniversityChanges{}, fieldError("scholarship_percentage must be a number")
	}
	if scholarship < 0 || scholarship > 100 {
		return models.UniversityChanges{}, fieldError("scholarship_percentage must be between 0 and 100")
	}
	fees, err := d.ApplicationFees.Decimal()
	if err != nil {
		return models.UniversityChanges{}, fieldError("application_fees must be a number")
	}
	if fees.IsNegative() {
		return models.UniversityChanges{}, fieldError("application_fees must be zero or greater")
	}
	return models.UniversityChanges{
		Name:                  d.Name,
		Country:               d.Country,
		Deadline:              deadline,
		ScholarshipPercentage: scholarship,
		ApplicationFees:       fees,
		Notes:                 d.Notes,
		Status:                d.Status,
	}, nil
}

// FormResult is returned for an accepted submission.
type FormResult struct {
	University *models.University
	State      models.FormState
	Redirect   string
}

// UniversityFormService drives the add and edit forms.
type UniversityFormService struct {
	universities *UniversityService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewUniversityFormService constructs the form controller.
func NewUniversityFormService(universities *UniversityService, validate *validator.Validate, logger *zap.Logger) *UniversityFormService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &UniversityFormService{universities: universities, validator: validate, logger: logger}
	svc.validator.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	svc.validator.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		n, ok := field.Interface().(NumericInput)
		if !ok || !n.IsSet() {
			return nil
		}
		return n.String()
	}, NumericInput{})
	_ = svc.validator.RegisterValidation("application_status", func(fl validator.FieldLevel) bool {
		return models.ApplicationStatus(fl.Field().String()).Valid()
	})
	return svc
}

// Load returns the stored values of a record for the edit form.
func (s *UniversityFormService) Load(ctx context.Context, id, userID string) (*UniversityDraft, error) {
	u, err := s.universities.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	draft := DraftFromUniversity(u)
	return &draft, nil
}

// Create validates the draft and inserts it for userID.
func (s *UniversityFormService) Create(ctx context.Context, userID string, draft UniversityDraft) (*FormResult, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, msgLoginToAdd)
	}
	changes, err := s.parse(draft)
	if err != nil {
		return nil, err
	}
	u, err := s.universities.Create(ctx, userID, changes)
	if err != nil {
		return nil, err
	}
	return &FormResult{University: u, State: models.FormStateNavigatedAway, Redirect: FormRedirect}, nil
}

// Update validates the draft and replaces record id for userID.
func (s *UniversityFormService) Update(ctx context.Context, id, userID string, draft UniversityDraft) (*FormResult, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, msgLoginToUpdate)
	}
	changes, err := s.parse(draft)
	if err != nil {
		return nil, err
	}
	u, err := s.universities.Update(ctx, id, userID, changes)
	if err != nil {
		return nil, err
	}
	return &FormResult{University: u, State: models.FormStateNavigatedAway, Redirect: FormRedirect}, nil
}

func (s *UniversityFormService) parse(draft UniversityDraft) (models.UniversityChanges, error) {
	draft.normalize()
	if err := s.validator.Struct(draft); err != nil {
		return models.UniversityChanges{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	return draft.changes()
}

func fieldError(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.ErrValidation.Message
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must be a number", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "application_status":
		return fmt.Sprintf("%s must be one of Applying, Waiting, Accepted, Waitlisted, Rejected", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
