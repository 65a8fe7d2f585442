// ==============================================================================
// PER-DOCUMENT VALIDATORS - internal/kyc/validators.go
// ==============================================================================
// One pure validator per document type. Validators never return Go errors for
// ordinary invalid input; everything is reported through ValidationResult.
// Every time-sensitive check takes the reference time explicitly.
// ==============================================================================

package kyc

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"fleetkyc/internal/domain"
)

// checks accumulates errors and warnings while a validator runs.
type checks struct {
	errors   []string
	warnings []string
}

func (c *checks) errorf(format string, args ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *checks) warnf(format string, args ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checks) result() domain.ValidationResult {
	res := domain.ValidationResult{
		Valid:    len(c.errors) == 0,
		Errors:   []string{},
		Warnings: []string{},
	}
	res.Errors = append(res.Errors, c.errors...)
	res.Warnings = append(res.Warnings, c.warnings...)
	return res
}

// ageAt returns full years between dateOfBirth and now.
func ageAt(dateOfBirth, now time.Time) int {
	age := now.Year() - dateOfBirth.Year()
	if now.YearDay() < dateOfBirth.YearDay() {
		age--
	}
	return age
}

func validateCNIE(data domain.CNIEData, now time.Time) domain.ValidationResult {
	var c checks

	if strings.TrimSpace(data.CNIENumber) == "" {
		c.errorf("CNIE number is required")
	} else if !cnieNumberRegex.MatchString(data.CNIENumber) {
		c.errorf("invalid CNIE format: %q (expected 1-2 letters followed by 6-7 digits)", data.CNIENumber)
	}

	if strings.TrimSpace(data.FullName) == "" {
		c.errorf("full name is required")
	}
	if data.DateOfBirth.IsZero() {
		c.errorf("date of birth is required")
	}
	if data.IssueDate.IsZero() {
		c.errorf("issue date is required")
	}
	if data.ExpiryDate.IsZero() {
		c.errorf("expiry date is required")
	}

	if !data.ExpiryDate.IsZero() {
		if data.ExpiryDate.Before(now) {
			c.errorf("CNIE expired on %s", data.ExpiryDate.Format("2006-01-02"))
		} else if data.ExpiryDate.Before(now.AddDate(0, 0, expiryWarningDays)) {
			c.warnf("CNIE expires within %d days", expiryWarningDays)
		}
	}

	if !data.DateOfBirth.IsZero() {
		if data.DateOfBirth.After(now) {
			c.errorf("date of birth is in the future")
		} else if ageAt(data.DateOfBirth, now) < minimumDriverAge {
			c.errorf("driver must be at least %d years old", minimumDriverAge)
		}
	}

	return c.result()
}

func validateDrivingLicense(data domain.DrivingLicenseData, now time.Time) domain.ValidationResult {
	var c checks

	if strings.TrimSpace(data.LicenseNumber) == "" {
		c.errorf("license number is required")
	} else if !licenseNumberRegex.MatchString(data.LicenseNumber) {
		c.errorf("invalid license number format: %q (expected 5-10 digits)", data.LicenseNumber)
	}

	if strings.TrimSpace(data.Category) == "" {
		c.errorf("license category is required")
	} else if allowed, ok := licenseCategoriesByVehicle[data.VehicleType]; ok && len(allowed) > 0 {
		match := false
		for _, cat := range allowed {
			if strings.EqualFold(cat, data.Category) {
				match = true
				break
			}
		}
		if !match {
			c.errorf("license category %q does not allow operating a %s (accepted: %s)",
				data.Category, data.VehicleType, strings.Join(allowed, ", "))
		}
	}

	if data.ExpiryDate.IsZero() {
		c.errorf("expiry date is required")
	} else if data.ExpiryDate.Before(now) {
		c.errorf("driving license expired on %s", data.ExpiryDate.Format("2006-01-02"))
	}

	if !data.DateOfBirth.IsZero() {
		age := ageAt(data.DateOfBirth, now)
		switch data.VehicleType {
		case domain.VehicleTypeMotorcycle:
			if age < minimumRiderAge {
				c.errorf("motorcycle riders must be at least %d years old", minimumRiderAge)
			}
		case domain.VehicleTypeCar:
			if age < minimumDriverAge {
				c.errorf("car drivers must be at least %d years old", minimumDriverAge)
			}
		}
	}

	return c.result()
}

func validateInsurance(data domain.InsuranceData, now time.Time) domain.ValidationResult {
	var c checks

	if strings.TrimSpace(data.PolicyNumber) == "" {
		c.errorf("policy number is required")
	} else if !policyNumberRegex.MatchString(data.PolicyNumber) {
		c.errorf("invalid policy number format: %q (expected 6-20 alphanumeric characters)", data.PolicyNumber)
	}

	// RC (responsabilité civile) is the legal minimum. A policy without it is
	// invalid no matter what else it covers.
	if !data.HasRC {
		c.errorf("mandatory RC (responsabilité civile) liability coverage is missing")
	}

	if data.ExpiryDate.IsZero() {
		c.errorf("expiry date is required")
	} else if data.ExpiryDate.Before(now) {
		c.errorf("insurance policy expired on %s", data.ExpiryDate.Format("2006-01-02"))
	}

	if !data.StartDate.IsZero() && !data.ExpiryDate.IsZero() && !data.StartDate.Before(data.ExpiryDate) {
		c.errorf("policy start date must precede expiry date")
	}

	if data.CoverageAmount.IsPositive() && data.CoverageAmount.LessThan(minCoverageAmount) {
		c.warnf("coverage amount %s MAD is below the recommended minimum of %s MAD",
			data.CoverageAmount.String(), minCoverageAmount.String())
	}

	return c.result()
}

func validateAutoEntrepreneur(data domain.AutoEntrepreneurData, now time.Time) domain.ValidationResult {
	var c checks

	if strings.TrimSpace(data.RegistrationNumber) == "" {
		c.errorf("registration number is required")
	} else if !registrationNoRegex.MatchString(data.RegistrationNumber) {
		c.errorf("invalid registration number format: %q (expected 8-15 digits)", data.RegistrationNumber)
	}

	if strings.TrimSpace(data.ICENumber) == "" {
		c.errorf("ICE number is required")
	} else if !iceNumberRegex.MatchString(data.ICENumber) {
		c.errorf("invalid ICE format: %q (expected 15 digits)", data.ICENumber)
	}

	if !data.IsActive {
		c.errorf("auto-entrepreneur registration is not currently active")
	}

	if !data.RegistrationDate.IsZero() &&
		data.RegistrationDate.Before(now.AddDate(-autoEntrepreneurValidityYears, 0, 0)) {
		c.warnf("registration is older than %d years; renewal may be required", autoEntrepreneurValidityYears)
	}

	if desc := strings.ToLower(data.ActivityDescription); desc != "" {
		related := false
		for _, kw := range deliveryActivityKeywords {
			if strings.Contains(desc, kw) {
				related = true
				break
			}
		}
		if !related {
			c.warnf("declared activity %q does not appear to be delivery-related", data.ActivityDescription)
		}
	}

	return c.result()
}

func validateVehicleInspection(data domain.VehicleInspectionData, now time.Time) domain.ValidationResult {
	var c checks

	if len(strings.TrimSpace(data.CenterCode)) < minCenterCodeLength {
		c.errorf("inspection center authorization code must be at least %d characters", minCenterCodeLength)
	}

	switch data.Result {
	case domain.InspectionResultPass:
	case domain.InspectionResultFail:
		c.errorf("vehicle failed the technical inspection")
	case domain.InspectionResultConditional:
		c.warnf("vehicle passed the inspection conditionally; defects must be fixed")
	default:
		c.errorf("invalid inspection result: %q", data.Result)
	}

	if data.ExpiryDate.IsZero() {
		c.errorf("expiry date is required")
	} else if data.ExpiryDate.Before(now) {
		c.errorf("vehicle inspection expired on %s", data.ExpiryDate.Format("2006-01-02"))
	}

	if data.VehicleYear > 0 && now.Year()-data.VehicleYear > inspectionMaxVehicleAgeYears {
		c.warnf("vehicle is older than %d years; more frequent inspections apply", inspectionMaxVehicleAgeYears)
	}

	return c.result()
}

func validateMedicalCertificate(data domain.MedicalCertificateData, now time.Time) domain.ValidationResult {
	var c checks

	if !data.IsFitToDrive {
		c.errorf("medical certificate does not declare fitness to drive")
	}

	if data.ExpiryDate.IsZero() {
		c.errorf("expiry date is required")
	} else if data.ExpiryDate.Before(now) {
		c.errorf("medical certificate expired on %s", data.ExpiryDate.Format("2006-01-02"))
	}

	if !data.IssueDate.IsZero() && !data.ExpiryDate.IsZero() {
		if data.IssueDate.After(data.ExpiryDate) {
			c.warnf("issue date is after expiry date")
		} else if data.ExpiryDate.After(data.IssueDate.AddDate(medicalMaxValidityYears, 0, 0)) {
			c.warnf("validity window exceeds the usual %d year(s)", medicalMaxValidityYears)
		}
	}

	return c.result()
}

// offenseTokens splits a record description into lowercase word tokens.
// Tokenizing on non-letter runes keeps accented French words whole, which a
// \b regex boundary would not.
func offenseTokens(description string) []string {
	return strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// containsDisqualifyingOffense matches whole words only, so "stationnement"
// never matches even when a keyword is one of its substrings.
func containsDisqualifyingOffense(description string) (string, bool) {
	for _, token := range offenseTokens(description) {
		for _, offense := range disqualifyingOffenses {
			if token == offense {
				return offense, true
			}
		}
	}
	return "", false
}

func validateCasierJudiciaire(data domain.CriminalRecordData, now time.Time) domain.ValidationResult {
	var c checks

	// Staleness, not absence, is the failure mode: the bulletin must have
	// been issued within the last 3 months.
	if data.IssueDate.IsZero() {
		c.errorf("issue date is required")
	} else if data.IssueDate.Before(now.AddDate(0, -casierValidityMonths, 0)) {
		c.errorf("criminal record extract is older than %d months and must be reissued", casierValidityMonths)
	}

	for _, record := range data.Records {
		if record.Expunged {
			continue
		}
		if offense, found := containsDisqualifyingOffense(record.Description); found {
			c.errorf("disqualifying offense on record: %q (matched %q)", record.Description, offense)
		}
	}

	return c.result()
}

func validateSelfieVerification(data domain.SelfieVerificationData, now time.Time) domain.ValidationResult {
	var c checks

	if data.FaceMatchScore < faceMatchMinScore {
		c.errorf("face match score %.2f is below the required minimum %.2f", data.FaceMatchScore, faceMatchMinScore)
	} else if data.FaceMatchScore < faceMatchWarnScore {
		c.warnf("face match score %.2f is barely above the minimum; manual review recommended", data.FaceMatchScore)
	}

	if data.LivenessScore < livenessMinScore {
		c.errorf("liveness score %.2f is below the required minimum %.2f", data.LivenessScore, livenessMinScore)
	}

	if data.CapturedAt.IsZero() {
		c.errorf("capture timestamp is required")
	} else if data.CapturedAt.After(now) {
		c.errorf("capture timestamp is in the future")
	} else if now.Sub(data.CapturedAt) > selfieMaxAge {
		c.warnf("selfie was captured more than 24 hours ago")
	}

	return c.result()
}

// nameMatches is the fuzzy owner check: case-insensitive substring in either
// direction. A mismatch is only a warning since an authorization letter can
// justify driving someone else's vehicle.
func nameMatches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func validateVehicleRegistration(data domain.VehicleRegistrationData, now time.Time) domain.ValidationResult {
	var c checks

	if strings.TrimSpace(data.PlateNumber) == "" {
		c.errorf("plate number is required")
	} else if !plateNumberRegex.MatchString(strings.ToUpper(data.PlateNumber)) {
		c.errorf("invalid plate number format: %q", data.PlateNumber)
	}

	if !data.FirstRegistrationDate.IsZero() &&
		data.FirstRegistrationDate.Before(now.AddDate(-registrationMaxVehicleAgeYears, 0, 0)) {
		c.errorf("vehicle is older than the permitted maximum of %d years", registrationMaxVehicleAgeYears)
	}

	if data.DriverName != "" && !nameMatches(data.OwnerName, data.DriverName) {
		c.warnf("registered owner %q does not match driver name %q; an authorization letter is required",
			data.OwnerName, data.DriverName)
	}

	if data.ExpiryDate.IsZero() {
		c.errorf("expiry date is required")
	} else if data.ExpiryDate.Before(now) {
		c.errorf("vehicle registration expired on %s", data.ExpiryDate.Format("2006-01-02"))
	}

	return c.result()
}
