package domain

import (
	"time"

	"github.com/google/uuid"
)

// KYCProgress summarizes a driver's documents against the required set.
type KYCProgress struct {
	TotalRequired        int  `json:"total_required"`
	SubmittedCount       int  `json:"submitted_count"`
	ApprovedCount        int  `json:"approved_count"`
	RejectedCount        int  `json:"rejected_count"`
	ExpiredCount         int  `json:"expired_count"`
	PendingCount         int  `json:"pending_count"`
	CompletionPercentage int  `json:"completion_percentage"`
	IsComplete           bool `json:"is_complete"`

	RequiredDocuments []DocumentType `json:"required_documents"`
	ApprovedDocuments []DocumentType `json:"approved_documents"`
	RejectedDocuments []DocumentType `json:"rejected_documents"`
	ExpiredDocuments  []DocumentType `json:"expired_documents"`
	PendingDocuments  []DocumentType `json:"pending_documents"`
	MissingDocuments  []DocumentType `json:"missing_documents"`
}

// VerificationStage is the onboarding state derived from progress.
// CanOperate is true only in the approved stage.
type VerificationStage struct {
	Stage           VerificationStageName `json:"stage"`
	Reason          string                `json:"reason"`
	CanOperate      bool                  `json:"can_operate"`
	RequiredActions []string              `json:"required_actions"`
	NextReviewDate  *time.Time            `json:"next_review_date,omitempty"`
}

// ExpiryAlert flags a document at or past an expiry threshold.
type ExpiryAlert struct {
	DocumentType    DocumentType `json:"document_type"`
	DriverID        uuid.UUID    `json:"driver_id"`
	ExpiryDate      time.Time    `json:"expiry_date"`
	DaysUntilExpiry int          `json:"days_until_expiry"`
	Severity        Severity     `json:"severity"`
	Message         string       `json:"message"`
}

// ScheduledCheck is a future re-verification checkpoint for one document.
type ScheduledCheck struct {
	DocumentType DocumentType `json:"document_type"`
	CheckDate    time.Time    `json:"check_date"`
}

// ReVerificationSchedule is the forward-looking renewal plan for a driver.
type ReVerificationSchedule struct {
	NextVerificationDate time.Time        `json:"next_verification_date"`
	DocumentsToRenew     []DocumentType   `json:"documents_to_renew"`
	UrgentDocuments      []DocumentType   `json:"urgent_documents"`
	ScheduledChecks      []ScheduledCheck `json:"scheduled_checks"`
}

// ReVerificationTask is an actionable remediation item.
type ReVerificationTask struct {
	DocumentType DocumentType `json:"document_type"`
	DriverID     uuid.UUID    `json:"driver_id"`
	Action       TaskAction   `json:"action"`
	Priority     Severity     `json:"priority"`
	DueDate      time.Time    `json:"due_date"`
	Description  string       `json:"description"`
}

// KYCResult is the per-driver aggregate produced by a full assessment.
type KYCResult struct {
	DriverID    uuid.UUID              `json:"driver_id"`
	Stage       VerificationStage      `json:"stage"`
	Progress    KYCProgress            `json:"progress"`
	Alerts      []ExpiryAlert          `json:"alerts"`
	Schedule    ReVerificationSchedule `json:"schedule"`
	Eligible    bool                   `json:"eligible"`
	OverallRisk Severity               `json:"overall_risk"`
	Notes       []string               `json:"notes"`
	AssessedAt  time.Time              `json:"assessed_at"`
}

// DocumentTypeCount pairs a document type with an occurrence count.
type DocumentTypeCount struct {
	Type  DocumentType `json:"type"`
	Count int          `json:"count"`
}

// FleetKYCStats aggregates assessment results across drivers.
type FleetKYCStats struct {
	TotalDrivers       int `json:"total_drivers"`
	FullyCompliant     int `json:"fully_compliant"`
	PartiallyCompliant int `json:"partially_compliant"`
	NonCompliant       int `json:"non_compliant"`

	DocumentsByStatus map[DocumentStatus]int `json:"documents_by_status"`

	ExpiringWithin30Days int `json:"expiring_within_30_days"`
	ExpiringWithin7Days  int `json:"expiring_within_7_days"`

	RiskDistribution  map[Severity]int              `json:"risk_distribution"`
	StageDistribution map[VerificationStageName]int `json:"stage_distribution"`

	MostMissingDocuments []DocumentTypeCount `json:"most_missing_documents"`
}

// ComplianceDocumentStatus classifies one required document in a compliance check.
type ComplianceDocumentStatus string

const (
	ComplianceDocumentCompliant ComplianceDocumentStatus = "compliant"
	ComplianceDocumentWarning   ComplianceDocumentStatus = "warning"
	ComplianceDocumentIssue     ComplianceDocumentStatus = "issue"
	ComplianceDocumentMissing   ComplianceDocumentStatus = "missing"
)

// DocumentComplianceDetail is the per-document breakdown of a compliance check.
type DocumentComplianceDetail struct {
	Type     DocumentType             `json:"type"`
	Status   ComplianceDocumentStatus `json:"status"`
	Issues   []string                 `json:"issues,omitempty"`
	Warnings []string                 `json:"warnings,omitempty"`
}

// ComplianceResult is the dedup-aware 0-100 score over required documents.
type ComplianceResult struct {
	Score       int                        `json:"score"`
	IsCompliant bool                       `json:"is_compliant"`
	Documents   []DocumentComplianceDetail `json:"documents"`
	CheckedAt   time.Time                  `json:"checked_at"`
}
