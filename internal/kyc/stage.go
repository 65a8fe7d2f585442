// ==============================================================================
// VERIFICATION STAGE MACHINE - internal/kyc/stage.go
// ==============================================================================

package kyc

import (
	"fmt"

	"fleetkyc/internal/domain"
)

// DetermineVerificationStage derives the onboarding state from progress. It
// is a pure function: identical progress always yields an identical stage.
// Rules are evaluated in strict priority order; the first match wins.
// The suspended stage is never produced here — it is reserved for externally
// forced states such as a failed batch assessment.
func DetermineVerificationStage(progress domain.KYCProgress) domain.VerificationStage {
	switch {
	case progress.SubmittedCount == 0:
		return domain.VerificationStage{
			Stage:           domain.StageInitial,
			Reason:          "no documents submitted yet",
			CanOperate:      false,
			RequiredActions: submitActions(progress.MissingDocuments),
		}

	case progress.ExpiredCount > 0 && len(progress.MissingDocuments) == 0 &&
		progress.RejectedCount == 0 && progress.PendingCount == 0:
		// Every required document is on file and none is contested, but some
		// have expired: operation is suspended until they are renewed.
		return domain.VerificationStage{
			Stage:           domain.StageReVerification,
			Reason:          "one or more documents have expired and must be renewed",
			CanOperate:      false,
			RequiredActions: renewActions(progress.ExpiredDocuments),
		}

	case progress.IsComplete:
		return domain.VerificationStage{
			Stage:           domain.StageApproved,
			Reason:          "all required documents are approved",
			CanOperate:      true,
			RequiredActions: []string{},
		}

	case progress.RejectedCount > 0 && len(progress.MissingDocuments) == 0:
		return domain.VerificationStage{
			Stage:           domain.StageRejected,
			Reason:          "one or more documents were rejected",
			CanOperate:      false,
			RequiredActions: resubmitActions(progress.RejectedDocuments),
		}

	case progress.PendingCount > 0 && len(progress.MissingDocuments) == 0:
		return domain.VerificationStage{
			Stage:           domain.StageUnderReview,
			Reason:          "submitted documents are awaiting review",
			CanOperate:      false,
			RequiredActions: []string{},
		}

	case len(progress.MissingDocuments) > 0:
		return domain.VerificationStage{
			Stage:           domain.StageDocumentsSubmitted,
			Reason:          "some required documents are still missing",
			CanOperate:      false,
			RequiredActions: submitActions(progress.MissingDocuments),
		}

	default:
		return domain.VerificationStage{
			Stage:           domain.StageUnderReview,
			Reason:          "documents are in a mixed transient state",
			CanOperate:      false,
			RequiredActions: []string{},
		}
	}
}

func submitActions(types []domain.DocumentType) []string {
	actions := make([]string, 0, len(types))
	for _, t := range types {
		actions = append(actions, fmt.Sprintf("Submit %s", DocumentTypeName(t)))
	}
	return actions
}

func renewActions(types []domain.DocumentType) []string {
	actions := make([]string, 0, len(types))
	for _, t := range types {
		actions = append(actions, fmt.Sprintf("Renew %s", DocumentTypeName(t)))
	}
	return actions
}

func resubmitActions(types []domain.DocumentType) []string {
	actions := make([]string, 0, len(types))
	for _, t := range types {
		actions = append(actions, fmt.Sprintf("Re-submit %s", DocumentTypeName(t)))
	}
	return actions
}
