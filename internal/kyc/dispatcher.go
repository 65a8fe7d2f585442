// ==============================================================================
// VALIDATION DISPATCHER - internal/kyc/dispatcher.go
// ==============================================================================

package kyc

import (
	"fmt"
	"time"

	"fleetkyc/internal/domain"
)

// validatorFunc validates one document payload against the reference time.
type validatorFunc func(data domain.DocumentData, now time.Time) domain.ValidationResult

// validatorRegistry routes each document type to its validator. Registering a
// new type here (plus its payload variant in domain) is the whole extension
// surface.
var validatorRegistry = map[domain.DocumentType]validatorFunc{
	domain.DocumentTypeCNIE:                expect(validateCNIE),
	domain.DocumentTypeDrivingLicense:      expect(validateDrivingLicense),
	domain.DocumentTypeInsurance:           expect(validateInsurance),
	domain.DocumentTypeAutoEntrepreneur:    expect(validateAutoEntrepreneur),
	domain.DocumentTypeVehicleInspection:   expect(validateVehicleInspection),
	domain.DocumentTypeMedicalCertificate:  expect(validateMedicalCertificate),
	domain.DocumentTypeCasierJudiciaire:    expect(validateCasierJudiciaire),
	domain.DocumentTypeSelfieVerification:  expect(validateSelfieVerification),
	domain.DocumentTypeVehicleRegistration: expect(validateVehicleRegistration),
}

// expect adapts a typed validator to the registry signature, reporting a
// payload/type mismatch as an ordinary invalid result.
func expect[T domain.DocumentData](fn func(T, time.Time) domain.ValidationResult) validatorFunc {
	return func(data domain.DocumentData, now time.Time) domain.ValidationResult {
		typed, ok := data.(T)
		if !ok {
			return invalidResult(fmt.Sprintf("document data is %T, which does not match the document type", data))
		}
		return fn(typed, now)
	}
}

func invalidResult(message string) domain.ValidationResult {
	return domain.ValidationResult{
		Valid:    false,
		Errors:   []string{message},
		Warnings: []string{},
	}
}

// ValidateDocument routes (type, data) to the matching validator. It is
// guaranteed never to panic: nil data, unknown types, payload mismatches, and
// even a panicking validator are all converted into invalid results.
func ValidateDocument(docType domain.DocumentType, data domain.DocumentData, now time.Time) (result domain.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = invalidResult(fmt.Sprintf("validator failure: %v", r))
		}
	}()

	if data == nil {
		return invalidResult("document data is required")
	}

	validate, ok := validatorRegistry[docType]
	if !ok {
		return invalidResult(fmt.Sprintf("unknown document type: %q", docType))
	}

	return validate(data, now)
}
