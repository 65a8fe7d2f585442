// ==============================================================================
// COMPLIANCE RULE TABLES - internal/kyc/rules.go
// ==============================================================================
// Immutable process-wide configuration: document names, per-vehicle required
// sets, license category mappings, offense keywords, and rule thresholds.
// ==============================================================================

package kyc

import (
	"regexp"
	"time"

	"fleetkyc/internal/domain"

	"github.com/shopspring/decimal"
)

// documentTypeNames maps each document type to its human-readable label.
var documentTypeNames = map[domain.DocumentType]string{
	domain.DocumentTypeCNIE:                "National ID (CNIE)",
	domain.DocumentTypeDrivingLicense:      "Driving License",
	domain.DocumentTypeInsurance:           "Vehicle Insurance",
	domain.DocumentTypeAutoEntrepreneur:    "Auto-Entrepreneur Registration",
	domain.DocumentTypeVehicleInspection:   "Vehicle Inspection (Contrôle Technique)",
	domain.DocumentTypeMedicalCertificate:  "Medical Certificate",
	domain.DocumentTypeCasierJudiciaire:    "Criminal Record Extract (Casier Judiciaire)",
	domain.DocumentTypeSelfieVerification:  "Selfie Verification",
	domain.DocumentTypeVehicleRegistration: "Vehicle Registration (Carte Grise)",
}

// DocumentTypeName returns the display label for a document type.
func DocumentTypeName(t domain.DocumentType) string {
	if name, ok := documentTypeNames[t]; ok {
		return name
	}
	return string(t)
}

// requiredDocumentsByVehicle is the required-document set per vehicle type.
// Bicycle couriers need no license, insurance, inspection, or registration.
var requiredDocumentsByVehicle = map[domain.VehicleType][]domain.DocumentType{
	domain.VehicleTypeBicycle: {
		domain.DocumentTypeCNIE,
		domain.DocumentTypeAutoEntrepreneur,
		domain.DocumentTypeMedicalCertificate,
		domain.DocumentTypeCasierJudiciaire,
		domain.DocumentTypeSelfieVerification,
	},
	domain.VehicleTypeMotorcycle: {
		domain.DocumentTypeCNIE,
		domain.DocumentTypeDrivingLicense,
		domain.DocumentTypeInsurance,
		domain.DocumentTypeAutoEntrepreneur,
		domain.DocumentTypeVehicleInspection,
		domain.DocumentTypeMedicalCertificate,
		domain.DocumentTypeCasierJudiciaire,
		domain.DocumentTypeSelfieVerification,
		domain.DocumentTypeVehicleRegistration,
	},
	domain.VehicleTypeCar: {
		domain.DocumentTypeCNIE,
		domain.DocumentTypeDrivingLicense,
		domain.DocumentTypeInsurance,
		domain.DocumentTypeAutoEntrepreneur,
		domain.DocumentTypeVehicleInspection,
		domain.DocumentTypeMedicalCertificate,
		domain.DocumentTypeCasierJudiciaire,
		domain.DocumentTypeSelfieVerification,
		domain.DocumentTypeVehicleRegistration,
	},
}

// licenseCategoriesByVehicle maps each vehicle type to its accepted license
// categories. Bicycles require no license at all.
var licenseCategoriesByVehicle = map[domain.VehicleType][]string{
	domain.VehicleTypeBicycle:    {},
	domain.VehicleTypeMotorcycle: {"A", "A1", "AM"},
	domain.VehicleTypeCar:        {"B"},
}

// disqualifyingOffenses are matched whole-word against non-expunged record
// descriptions on the casier judiciaire.
var disqualifyingOffenses = []string{
	"vol",
	"agression",
	"violence",
	"stupéfiants",
	"drogue",
	"fraude",
	"escroquerie",
	"homicide",
	"viol",
	"trafic",
	"arme",
}

// deliveryActivityKeywords identify an auto-entrepreneur activity description
// as delivery-related.
var deliveryActivityKeywords = []string{
	"livraison",
	"transport",
	"coursier",
	"delivery",
}

// Document format patterns.
var (
	cnieNumberRegex     = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{6,7}$`)
	licenseNumberRegex  = regexp.MustCompile(`^[0-9]{5,10}$`)
	policyNumberRegex   = regexp.MustCompile(`^[A-Za-z0-9]{6,20}$`)
	registrationNoRegex = regexp.MustCompile(`^[0-9]{8,15}$`)
	iceNumberRegex      = regexp.MustCompile(`^[0-9]{15}$`)
	plateNumberRegex    = regexp.MustCompile(`^[0-9]{1,5}-[A-Z]-[0-9]{1,2}$`)
)

// Rule thresholds.
const (
	minimumDriverAge               = 18
	minimumRiderAge                = 16
	expiryWarningDays              = 30
	minCenterCodeLength            = 3
	inspectionMaxVehicleAgeYears   = 8
	registrationMaxVehicleAgeYears = 15
	casierValidityMonths           = 3
	autoEntrepreneurValidityYears  = 5
	medicalMaxValidityYears        = 1

	faceMatchMinScore  = 0.85
	faceMatchWarnScore = 0.90
	livenessMinScore   = 0.80
	selfieMaxAge       = 24 * time.Hour
)

// minCoverageAmount is the liability coverage floor in MAD below which a
// policy draws a warning.
var minCoverageAmount = decimal.NewFromInt(50000)
