// Package domain defines the core business entities for driver compliance.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==============================================================================
// ENUMS & STATUS TYPES
// ==============================================================================

// DocumentType represents the compliance documents a delivery driver submits.
type DocumentType string

const (
	DocumentTypeCNIE                DocumentType = "cnie"
	DocumentTypeDrivingLicense      DocumentType = "driving_license"
	DocumentTypeInsurance           DocumentType = "insurance"
	DocumentTypeAutoEntrepreneur    DocumentType = "auto_entrepreneur"
	DocumentTypeVehicleInspection   DocumentType = "vehicle_inspection"
	DocumentTypeMedicalCertificate  DocumentType = "medical_certificate"
	DocumentTypeCasierJudiciaire    DocumentType = "casier_judiciaire"
	DocumentTypeSelfieVerification  DocumentType = "selfie_verification"
	DocumentTypeVehicleRegistration DocumentType = "carte_grise"
)

// AllDocumentTypes lists every supported document type.
var AllDocumentTypes = []DocumentType{
	DocumentTypeCNIE,
	DocumentTypeDrivingLicense,
	DocumentTypeInsurance,
	DocumentTypeAutoEntrepreneur,
	DocumentTypeVehicleInspection,
	DocumentTypeMedicalCertificate,
	DocumentTypeCasierJudiciaire,
	DocumentTypeSelfieVerification,
	DocumentTypeVehicleRegistration,
}

// DocumentStatus represents the review status of a submitted document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
	DocumentStatusExpired  DocumentStatus = "expired"
)

// VehicleType determines which documents a driver must hold.
type VehicleType string

const (
	VehicleTypeBicycle    VehicleType = "bicycle"
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeCar        VehicleType = "car"
)

// VerificationStageName is one of the 7 onboarding states.
type VerificationStageName string

const (
	StageInitial            VerificationStageName = "initial"
	StageDocumentsSubmitted VerificationStageName = "documents_submitted"
	StageUnderReview        VerificationStageName = "under_review"
	StageApproved           VerificationStageName = "approved"
	StageRejected           VerificationStageName = "rejected"
	StageSuspended          VerificationStageName = "suspended"
	StageReVerification     VerificationStageName = "re_verification"
)

// Severity ranks expiry alerts and overall driver risk.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// InspectionResult is the outcome of a contrôle technique.
type InspectionResult string

const (
	InspectionResultPass        InspectionResult = "pass"
	InspectionResultFail        InspectionResult = "fail"
	InspectionResultConditional InspectionResult = "conditional"
)

// TaskAction is the remediation a re-verification task asks for.
type TaskAction string

const (
	TaskActionRenew    TaskAction = "renew"
	TaskActionReUpload TaskAction = "re_upload"
	TaskActionReVerify TaskAction = "re_verify"
)

// ==============================================================================
// DOCUMENT DATA UNION
// ==============================================================================

// DocumentData is the structured payload a document carries, one shape per
// DocumentType. The interface is sealed: only the payload types in this
// package implement it, so a new document type forces a change here and in
// DecodeDocumentData.
type DocumentData interface {
	Type() DocumentType
	isDocumentData()
}

// CNIEData is the Moroccan national electronic ID card payload.
type CNIEData struct {
	CNIENumber  string    `json:"cnie_number" validate:"omitempty,cnie"`
	FullName    string    `json:"full_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	IssueDate   time.Time `json:"issue_date"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Address     string    `json:"address,omitempty"`
}

func (CNIEData) Type() DocumentType { return DocumentTypeCNIE }
func (CNIEData) isDocumentData()    {}

// DrivingLicenseData carries the driving license fields. VehicleType is the
// vehicle the driver operates, set by the caller so the category check can
// run against the right allowed set.
type DrivingLicenseData struct {
	LicenseNumber string      `json:"license_number"`
	Category      string      `json:"category"`
	HolderName    string      `json:"holder_name"`
	DateOfBirth   time.Time   `json:"date_of_birth"`
	IssueDate     time.Time   `json:"issue_date"`
	ExpiryDate    time.Time   `json:"expiry_date"`
	VehicleType   VehicleType `json:"vehicle_type"`
}

func (DrivingLicenseData) Type() DocumentType { return DocumentTypeDrivingLicense }
func (DrivingLicenseData) isDocumentData()    {}

// InsuranceData carries the vehicle insurance policy fields. HasRC is the
// mandatory responsabilité civile (third-party liability) coverage flag.
type InsuranceData struct {
	PolicyNumber   string          `json:"policy_number"`
	Insurer        string          `json:"insurer"`
	StartDate      time.Time       `json:"start_date"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	HasRC          bool            `json:"has_rc"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
}

func (InsuranceData) Type() DocumentType { return DocumentTypeInsurance }
func (InsuranceData) isDocumentData()    {}

// AutoEntrepreneurData carries the simplified self-employed tax registration.
type AutoEntrepreneurData struct {
	RegistrationNumber  string    `json:"registration_number"`
	ICENumber           string    `json:"ice_number" validate:"omitempty,ice"`
	IsActive            bool      `json:"is_active"`
	RegistrationDate    time.Time `json:"registration_date"`
	ActivityDescription string    `json:"activity_description"`
}

func (AutoEntrepreneurData) Type() DocumentType { return DocumentTypeAutoEntrepreneur }
func (AutoEntrepreneurData) isDocumentData()    {}

// VehicleInspectionData carries the contrôle technique report.
type VehicleInspectionData struct {
	CenterCode     string           `json:"center_code"`
	Result         InspectionResult `json:"result"`
	InspectionDate time.Time        `json:"inspection_date"`
	ExpiryDate     time.Time        `json:"expiry_date"`
	VehicleYear    int              `json:"vehicle_year"`
}

func (VehicleInspectionData) Type() DocumentType { return DocumentTypeVehicleInspection }
func (VehicleInspectionData) isDocumentData()    {}

// MedicalCertificateData carries the medical fitness declaration.
type MedicalCertificateData struct {
	DoctorName   string    `json:"doctor_name"`
	IsFitToDrive bool      `json:"is_fit_to_drive"`
	IssueDate    time.Time `json:"issue_date"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Restrictions string    `json:"restrictions,omitempty"`
}

func (MedicalCertificateData) Type() DocumentType { return DocumentTypeMedicalCertificate }
func (MedicalCertificateData) isDocumentData()    {}

// OffenseRecord is one entry on a criminal-record extract.
type OffenseRecord struct {
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Expunged    bool      `json:"expunged"`
}

// CriminalRecordData carries the casier judiciaire (bulletin n°3) extract.
type CriminalRecordData struct {
	BulletinNumber string          `json:"bulletin_number,omitempty"`
	IssueDate      time.Time       `json:"issue_date"`
	Records        []OffenseRecord `json:"records,omitempty"`
}

func (CriminalRecordData) Type() DocumentType { return DocumentTypeCasierJudiciaire }
func (CriminalRecordData) isDocumentData()    {}

// SelfieVerificationData carries the biometric match produced upstream.
type SelfieVerificationData struct {
	FaceMatchScore float64   `json:"face_match_score"`
	LivenessScore  float64   `json:"liveness_score"`
	CapturedAt     time.Time `json:"captured_at"`
}

func (SelfieVerificationData) Type() DocumentType { return DocumentTypeSelfieVerification }
func (SelfieVerificationData) isDocumentData()    {}

// VehicleRegistrationData carries the carte grise fields. DriverName is the
// driver's registered name, set by the caller so the owner cross-check can
// run without reaching back into the profile.
type VehicleRegistrationData struct {
	PlateNumber           string    `json:"plate_number" validate:"omitempty,morocco_plate"`
	OwnerName             string    `json:"owner_name"`
	DriverName            string    `json:"driver_name,omitempty"`
	Brand                 string    `json:"brand,omitempty"`
	Model                 string    `json:"model,omitempty"`
	FirstRegistrationDate time.Time `json:"first_registration_date"`
	ExpiryDate            time.Time `json:"expiry_date"`
}

func (VehicleRegistrationData) Type() DocumentType { return DocumentTypeVehicleRegistration }
func (VehicleRegistrationData) isDocumentData()    {}

// DecodeDocumentData unmarshals a raw payload into the variant matching t.
// The switch is exhaustive over AllDocumentTypes.
func DecodeDocumentData(t DocumentType, raw json.RawMessage) (DocumentData, error) {
	var (
		data DocumentData
		err  error
	)

	switch t {
	case DocumentTypeCNIE:
		var d CNIEData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeDrivingLicense:
		var d DrivingLicenseData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeInsurance:
		var d InsuranceData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeAutoEntrepreneur:
		var d AutoEntrepreneurData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeVehicleInspection:
		var d VehicleInspectionData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeMedicalCertificate:
		var d MedicalCertificateData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeCasierJudiciaire:
		var d CriminalRecordData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeSelfieVerification:
		var d SelfieVerificationData
		err = json.Unmarshal(raw, &d)
		data = d
	case DocumentTypeVehicleRegistration:
		var d VehicleRegistrationData
		err = json.Unmarshal(raw, &d)
		data = d
	default:
		return nil, fmt.Errorf("unknown document type %q", t)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return data, nil
}

// ==============================================================================
// DOMAIN MODELS
// ==============================================================================

// DriverDocument is one submitted compliance document.
type DriverDocument struct {
	ID              uuid.UUID      `json:"id"`
	DriverID        uuid.UUID      `json:"driver_id"`
	Type            DocumentType   `json:"type"`
	Status          DocumentStatus `json:"status"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	ExpiryDate      *time.Time     `json:"expiry_date,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Data            DocumentData   `json:"document_data,omitempty"`
	ImageURL        string         `json:"document_image_url,omitempty"`
}

// driverDocumentJSON mirrors DriverDocument with the payload kept raw so the
// union can be decoded by type.
type driverDocumentJSON struct {
	ID              uuid.UUID       `json:"id"`
	DriverID        uuid.UUID       `json:"driver_id"`
	Type            DocumentType    `json:"type"`
	Status          DocumentStatus  `json:"status"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Data            json.RawMessage `json:"document_data,omitempty"`
	ImageURL        string          `json:"document_image_url,omitempty"`
}

// UnmarshalJSON decodes the document with its typed payload.
func (d *DriverDocument) UnmarshalJSON(b []byte) error {
	var raw driverDocumentJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	d.ID = raw.ID
	d.DriverID = raw.DriverID
	d.Type = raw.Type
	d.Status = raw.Status
	d.SubmittedAt = raw.SubmittedAt
	d.ReviewedAt = raw.ReviewedAt
	d.ExpiryDate = raw.ExpiryDate
	d.RejectionReason = raw.RejectionReason
	d.ImageURL = raw.ImageURL
	d.Data = nil

	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		data, err := DecodeDocumentData(raw.Type, raw.Data)
		if err != nil {
			return err
		}
		d.Data = data
	}
	return nil
}

// DriverProfile is the caller-owned snapshot the pipeline reads.
type DriverProfile struct {
	DriverID         uuid.UUID        `json:"driver_id"`
	Name             string           `json:"name"`
	DateOfBirth      time.Time        `json:"date_of_birth"`
	VehicleType      VehicleType      `json:"vehicle_type"`
	Documents        []DriverDocument `json:"documents"`
	RegistrationDate time.Time        `json:"registration_date"`
	City             string           `json:"city,omitempty"`
	PhoneNumber      string           `json:"phone_number,omitempty"`
}

// ValidationResult is the outcome of validating one document payload.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
