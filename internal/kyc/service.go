// ==============================================================================
// KYC ORCHESTRATOR - internal/kyc/service.go
// ==============================================================================
// Runs the full assessment pipeline for one driver and batches it across a
// fleet with per-driver failure isolation.
// ==============================================================================

package kyc

import (
	"fmt"
	"time"

	"fleetkyc/internal/domain"
	"fleetkyc/internal/kyc/metrics"
	"fleetkyc/pkg/logger"

	"github.com/google/uuid"
)

// Service runs KYC assessments. The pipeline itself is pure; the service
// only adds logging and metrics around it.
type Service struct {
	logger  logger.Logger
	metrics *metrics.Metrics

	// assess is the per-driver pipeline; swapped out in tests to exercise
	// batch failure isolation.
	assess func(domain.DriverProfile, time.Time) domain.KYCResult
}

// NewService creates a Service. Metrics may be nil.
func NewService(log logger.Logger, m *metrics.Metrics) *Service {
	s := &Service{
		logger:  log,
		metrics: m,
	}
	s.assess = s.RunAssessment
	return s
}

// RunAssessment evaluates one driver and never returns an error: validator
// failures become notes on the result, not exceptions.
func (s *Service) RunAssessment(profile domain.DriverProfile, now time.Time) domain.KYCResult {
	start := time.Now()

	progress := CalculateProgress(profile.Documents, profile.VehicleType)

	notes := []string{}
	for _, doc := range profile.Documents {
		if doc.Status == domain.DocumentStatusRejected {
			continue
		}

		res := ValidateDocument(doc.Type, withProfileContext(doc.Data, profile), now)
		name := DocumentTypeName(doc.Type)
		for _, e := range res.Errors {
			notes = append(notes, fmt.Sprintf("%s: %s", name, e))
		}
		for _, w := range res.Warnings {
			notes = append(notes, fmt.Sprintf("%s (warning): %s", name, w))
		}
	}

	alerts := CheckDocumentExpiry(profile.Documents, now)
	for _, alert := range alerts {
		if alert.Severity == domain.SeverityCritical || alert.Severity == domain.SeverityHigh {
			notes = append(notes, alert.Message)
		}
	}

	stage := DetermineVerificationStage(progress)
	schedule := ScheduleReVerification(profile.Documents, now)

	eligible := progress.IsComplete &&
		progress.RejectedCount == 0 &&
		progress.ExpiredCount == 0 &&
		progress.CompletionPercentage == 100

	risk := AssessOverallRisk(progress, alerts, stage)

	s.metrics.IncrementOutcome(string(stage.Stage), string(risk))
	s.metrics.ObserveAssessmentLatency(time.Since(start))

	return domain.KYCResult{
		DriverID:    profile.DriverID,
		Stage:       stage,
		Progress:    progress,
		Alerts:      alerts,
		Schedule:    schedule,
		Eligible:    eligible,
		OverallRisk: risk,
		Notes:       notes,
		AssessedAt:  now,
	}
}

// BatchAssessment runs the orchestrator over every profile. One profile's
// failure never aborts the batch: it is caught, logged, and replaced with a
// degraded suspended/critical result carrying the failure message.
func (s *Service) BatchAssessment(profiles []domain.DriverProfile, now time.Time) map[uuid.UUID]domain.KYCResult {
	results := make(map[uuid.UUID]domain.KYCResult, len(profiles))

	for _, profile := range profiles {
		results[profile.DriverID] = s.assessIsolated(profile, now)
	}

	return results
}

func (s *Service) assessIsolated(profile domain.DriverProfile, now time.Time) (result domain.KYCResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("KYC assessment failed; substituting degraded result", map[string]interface{}{
				"driver_id": profile.DriverID.String(),
				"error":     fmt.Sprintf("%v", r),
			})
			s.metrics.IncrementBatchFailure()
			result = degradedResult(profile.DriverID, fmt.Sprintf("assessment failed: %v", r), now)
		}
	}()

	return s.assess(profile, now)
}

// degradedResult marks a driver whose assessment could not run. The stage is
// the externally-forced suspended state the transition function itself never
// produces.
func degradedResult(driverID uuid.UUID, note string, now time.Time) domain.KYCResult {
	return domain.KYCResult{
		DriverID: driverID,
		Stage: domain.VerificationStage{
			Stage:           domain.StageSuspended,
			Reason:          "assessment could not be completed",
			CanOperate:      false,
			RequiredActions: []string{"Contact support to re-run verification"},
		},
		Progress: domain.KYCProgress{
			RequiredDocuments: []domain.DocumentType{},
			ApprovedDocuments: []domain.DocumentType{},
			RejectedDocuments: []domain.DocumentType{},
			ExpiredDocuments:  []domain.DocumentType{},
			PendingDocuments:  []domain.DocumentType{},
			MissingDocuments:  []domain.DocumentType{},
		},
		Alerts: []domain.ExpiryAlert{},
		Schedule: domain.ReVerificationSchedule{
			NextVerificationDate: now,
			DocumentsToRenew:     []domain.DocumentType{},
			UrgentDocuments:      []domain.DocumentType{},
			ScheduledChecks:      []domain.ScheduledCheck{},
		},
		Eligible:    false,
		OverallRisk: domain.SeverityCritical,
		Notes:       []string{note},
		AssessedAt:  now,
	}
}

// withProfileContext fills the cross-check fields some payloads need from the
// profile when the caller left them empty.
func withProfileContext(data domain.DocumentData, profile domain.DriverProfile) domain.DocumentData {
	switch d := data.(type) {
	case domain.DrivingLicenseData:
		if d.VehicleType == "" {
			d.VehicleType = profile.VehicleType
		}
		if d.DateOfBirth.IsZero() {
			d.DateOfBirth = profile.DateOfBirth
		}
		return d
	case domain.VehicleRegistrationData:
		if d.DriverName == "" {
			d.DriverName = profile.Name
		}
		return d
	default:
		return data
	}
}
