// ==============================================================================
// PROGRESS CALCULATOR - internal/kyc/progress.go
// ==============================================================================

package kyc

import (
	"math"
	"sort"

	"fleetkyc/internal/domain"
)

// GetRequiredDocuments returns the document set a driver must hold for the
// given vehicle type. Unknown vehicle types get the full car set.
func GetRequiredDocuments(vehicleType domain.VehicleType) []domain.DocumentType {
	required, ok := requiredDocumentsByVehicle[vehicleType]
	if !ok {
		required = requiredDocumentsByVehicle[domain.VehicleTypeCar]
	}
	out := make([]domain.DocumentType, len(required))
	copy(out, required)
	return out
}

// latestByType keeps the most recently submitted document per type.
// Duplicate submissions are resolved most-recent-wins everywhere status is
// derived, so a superseded rejection cannot count against a later approval.
func latestByType(documents []domain.DriverDocument) map[domain.DocumentType]domain.DriverDocument {
	latest := make(map[domain.DocumentType]domain.DriverDocument, len(documents))
	for _, doc := range documents {
		current, ok := latest[doc.Type]
		if !ok || doc.SubmittedAt.After(current.SubmittedAt) {
			latest[doc.Type] = doc
		}
	}
	return latest
}

// CalculateProgress partitions the required set by the status of each type's
// most recent submission.
func CalculateProgress(documents []domain.DriverDocument, vehicleType domain.VehicleType) domain.KYCProgress {
	required := GetRequiredDocuments(vehicleType)
	latest := latestByType(documents)

	progress := domain.KYCProgress{
		TotalRequired:     len(required),
		RequiredDocuments: required,
		ApprovedDocuments: []domain.DocumentType{},
		RejectedDocuments: []domain.DocumentType{},
		ExpiredDocuments:  []domain.DocumentType{},
		PendingDocuments:  []domain.DocumentType{},
		MissingDocuments:  []domain.DocumentType{},
	}

	for _, docType := range required {
		doc, submitted := latest[docType]
		if !submitted {
			progress.MissingDocuments = append(progress.MissingDocuments, docType)
			continue
		}

		progress.SubmittedCount++
		switch doc.Status {
		case domain.DocumentStatusApproved:
			progress.ApprovedCount++
			progress.ApprovedDocuments = append(progress.ApprovedDocuments, docType)
		case domain.DocumentStatusRejected:
			progress.RejectedCount++
			progress.RejectedDocuments = append(progress.RejectedDocuments, docType)
		case domain.DocumentStatusExpired:
			progress.ExpiredCount++
			progress.ExpiredDocuments = append(progress.ExpiredDocuments, docType)
		default:
			progress.PendingCount++
			progress.PendingDocuments = append(progress.PendingDocuments, docType)
		}
	}

	if progress.TotalRequired > 0 {
		progress.CompletionPercentage = int(math.Round(
			100 * float64(progress.ApprovedCount) / float64(progress.TotalRequired)))
	}
	progress.IsComplete = progress.ApprovedCount == progress.TotalRequired &&
		len(progress.MissingDocuments) == 0

	return progress
}

// sortDocumentTypes orders types by their position in AllDocumentTypes for
// stable output.
func sortDocumentTypes(types []domain.DocumentType) {
	order := make(map[domain.DocumentType]int, len(domain.AllDocumentTypes))
	for i, t := range domain.AllDocumentTypes {
		order[t] = i
	}
	sort.SliceStable(types, func(i, j int) bool {
		return order[types[i]] < order[types[j]]
	})
}
