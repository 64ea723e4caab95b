package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
)

var tenDigits = regexp.MustCompile(`^\d{10}$`)

// MissingPersonRequest is the public missing person form.
type MissingPersonRequest struct {
	MissingPersonName   string `json:"missingPersonName"`
	MissingPersonMobile string `json:"missingPersonMobile"`
	ReporterContact     string `json:"reporterContact"`
	LastSeenGhat        string `json:"lastSeenGhat"`
	DetailedLocation    string `json:"detailedLocation"`
	Description         string `json:"description"`
	PhotoURL            string `json:"photoUrl"`
}

// EmergencyRequest is the public medical emergency form.
type EmergencyRequest struct {
	IssueType string `json:"issueType"`
	Location  string `json:"location"`
	Details   string `json:"details"`
}

// IncidentService files and updates missing person reports and health
// emergencies.
type IncidentService struct {
	Store     repository.IncidentStore
	Log       *zap.Logger
	NewCaseID func() (string, error)
	Now       func() time.Time
}

// NewIncidentService returns an IncidentService with production defaults.
func NewIncidentService(store repository.IncidentStore, log *zap.Logger) *IncidentService {
	return &IncidentService{
		Store:     store,
		Log:       log,
		NewCaseID: NewCaseID,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func minLen(field, v string, n int) error {
	if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", n)}
	}
	return nil
}

// ReportMissingPerson files a new report with status Pending.
func (s *IncidentService) ReportMissingPerson(ctx context.Context, req MissingPersonRequest) (*model.MissingPersonReport, error) {
	if err := minLen("missingPersonName", req.MissingPersonName, 3); err != nil {
		return nil, err
	}
	if !tenDigits.MatchString(strings.TrimSpace(req.ReporterContact)) {
		return nil, &ValidationError{Field: "reporterContact", Reason: "must be a 10-digit mobile number"}
	}
	if strings.TrimSpace(req.LastSeenGhat) == "" {
		return nil, &ValidationError{Field: "lastSeenGhat", Reason: "is required"}
	}
	if err := minLen("description", req.Description, 10); err != nil {
		return nil, err
	}
	caseID, err := s.NewCaseID()
	if err != nil {
		return nil, fmt.Errorf("generate case id: %w", err)
	}
	r := &model.MissingPersonReport{
		CaseID:              caseID,
		MissingPersonName:   strings.TrimSpace(req.MissingPersonName),
		MissingPersonMobile: strings.TrimSpace(req.MissingPersonMobile),
		ReporterContact:     strings.TrimSpace(req.ReporterContact),
		LastSeenGhat:        strings.TrimSpace(req.LastSeenGhat),
		DetailedLocation:    strings.TrimSpace(req.DetailedLocation),
		Description:         strings.TrimSpace(req.Description),
		PhotoURL:            strings.TrimSpace(req.PhotoURL),
		Status:              model.MissingPending,
		CreatedAt:           s.Now(),
	}
	if err := s.Store.CreateMissingPerson(ctx, r); err != nil {
		return nil, err
	}
	s.Log.Info("missing person reported", zap.String("case_id", r.CaseID), zap.String("ghat", r.LastSeenGhat))
	return r, nil
}

// ReportEmergency files a new health emergency with status Pending.
func (s *IncidentService) ReportEmergency(ctx context.Context, req EmergencyRequest) (*model.HealthEmergency, error) {
	if strings.TrimSpace(req.IssueType) == "" {
		return nil, &ValidationError{Field: "issueType", Reason: "is required"}
	}
	if err := minLen("location", req.Location, 3); err != nil {
		return nil, err
	}
	e := &model.HealthEmergency{
		IssueType: strings.TrimSpace(req.IssueType),
		Location:  strings.TrimSpace(req.Location),
		Details:   strings.TrimSpace(req.Details),
		Status:    model.EmergencyPending,
		CreatedAt: s.Now(),
	}
	if err := s.Store.CreateEmergency(ctx, e); err != nil {
		return nil, err
	}
	s.Log.Warn("health emergency reported", zap.String("id", e.ID), zap.String("issue", e.IssueType), zap.String("location", e.Location))
	return e, nil
}

func (s *IncidentService) MissingPersons(ctx context.Context, limit int) ([]model.MissingPersonReport, error) {
	return s.Store.ListMissingPersons(ctx, limit)
}

func (s *IncidentService) Emergencies(ctx context.Context, limit int) ([]model.HealthEmergency, error) {
	return s.Store.ListEmergencies(ctx, limit)
}

// SetMissingPersonStatus moves a report to Pending, Under Investigation or Found.
func (s *IncidentService) SetMissingPersonStatus(ctx context.Context, id, status string) error {
	switch status {
	case model.MissingPending, model.MissingInvestigating, model.MissingFound:
	default:
		return &ValidationError{Field: "status", Reason: "must be Pending, Under Investigation or Found"}
	}
	err := s.Store.UpdateMissingPersonStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "missing person report", Key: id}
	}
	return err
}

// SetEmergencyStatus moves an emergency to Pending, On-site or Responded.
func (s *IncidentService) SetEmergencyStatus(ctx context.Context, id, status string) error {
	switch status {
	case model.EmergencyPending, model.EmergencyOnSite, model.EmergencyResponded:
	default:
		return &ValidationError{Field: "status", Reason: "must be Pending, On-site or Responded"}
	}
	err := s.Store.UpdateEmergencyStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "emergency", Key: id}
	}
	return err
}
