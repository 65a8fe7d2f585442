package kyc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleetkyc/internal/domain"
)

func TestValidateDocumentRoutesToMatchingValidator(t *testing.T) {
	res := ValidateDocument(domain.DocumentTypeCNIE, validCNIE(), testNow)

	assert.True(t, res.Valid)
	assert.NotNil(t, res.Errors)
	assert.NotNil(t, res.Warnings)
}

func TestValidateDocumentNilData(t *testing.T) {
	res := ValidateDocument(domain.DocumentTypeCNIE, nil, testNow)

	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "required")
}

func TestValidateDocumentUnknownType(t *testing.T) {
	res := ValidateDocument("passport", validCNIE(), testNow)

	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "unknown document type")
}

func TestValidateDocumentPayloadTypeMismatch(t *testing.T) {
	// CNIE payload routed to the insurance validator must fail cleanly, not
	// panic.
	res := ValidateDocument(domain.DocumentTypeInsurance, validCNIE(), testNow)

	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors[0], "does not match")
}

func TestValidateDocumentRecoversFromPanickingValidator(t *testing.T) {
	original := validatorRegistry[domain.DocumentTypeCNIE]
	validatorRegistry[domain.DocumentTypeCNIE] = func(domain.DocumentData, time.Time) domain.ValidationResult {
		panic("boom")
	}
	defer func() { validatorRegistry[domain.DocumentTypeCNIE] = original }()

	assert.NotPanics(t, func() {
		res := ValidateDocument(domain.DocumentTypeCNIE, validCNIE(), testNow)
		assert.False(t, res.Valid)
		assert.Contains(t, res.Errors[0], "boom")
	})
}

func TestValidatorRegistryCoversAllDocumentTypes(t *testing.T) {
	for _, docType := range domain.AllDocumentTypes {
		_, ok := validatorRegistry[docType]
		assert.True(t, ok, "no validator registered for %s", docType)
	}
}
