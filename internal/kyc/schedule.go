// ==============================================================================
// RE-VERIFICATION SCHEDULER - internal/kyc/schedule.go
// ==============================================================================

package kyc

import (
	"fmt"
	"time"

	"fleetkyc/internal/domain"
)

const (
	renewWindowDays  = 30
	urgentWindowDays = 7
	checkLeadDays    = 30
)

// ScheduleReVerification computes the renewal plan for a document set.
// Expired documents land in both the renew and urgent buckets; documents
// expiring within 30 days are queued for renewal (urgent within 7); documents
// further out get a scheduled check 30 days before expiry. The casier
// judiciaire additionally gets a periodic re-check every 3 months from its
// submission date, independent of any expiry date.
func ScheduleReVerification(documents []domain.DriverDocument, now time.Time) domain.ReVerificationSchedule {
	schedule := domain.ReVerificationSchedule{
		DocumentsToRenew: []domain.DocumentType{},
		UrgentDocuments:  []domain.DocumentType{},
		ScheduledChecks:  []domain.ScheduledCheck{},
	}

	renewSeen := map[domain.DocumentType]bool{}
	urgentSeen := map[domain.DocumentType]bool{}

	addRenew := func(t domain.DocumentType) {
		if !renewSeen[t] {
			renewSeen[t] = true
			schedule.DocumentsToRenew = append(schedule.DocumentsToRenew, t)
		}
	}
	addUrgent := func(t domain.DocumentType) {
		if !urgentSeen[t] {
			urgentSeen[t] = true
			schedule.UrgentDocuments = append(schedule.UrgentDocuments, t)
		}
	}

	for _, doc := range documents {
		if doc.Type == domain.DocumentTypeCasierJudiciaire && !doc.SubmittedAt.IsZero() {
			schedule.ScheduledChecks = append(schedule.ScheduledChecks, domain.ScheduledCheck{
				DocumentType: doc.Type,
				CheckDate:    nextCasierCheck(doc.SubmittedAt, now),
			})
		}

		if doc.ExpiryDate == nil {
			continue
		}

		days := daysUntil(*doc.ExpiryDate, now)
		switch {
		case days < 0 || doc.Status == domain.DocumentStatusExpired:
			addRenew(doc.Type)
			addUrgent(doc.Type)
		case days <= renewWindowDays:
			addRenew(doc.Type)
			if days <= urgentWindowDays {
				addUrgent(doc.Type)
			}
		default:
			schedule.ScheduledChecks = append(schedule.ScheduledChecks, domain.ScheduledCheck{
				DocumentType: doc.Type,
				CheckDate:    doc.ExpiryDate.AddDate(0, 0, -checkLeadDays),
			})
		}
	}

	sortDocumentTypes(schedule.DocumentsToRenew)
	sortDocumentTypes(schedule.UrgentDocuments)

	schedule.NextVerificationDate = now.AddDate(0, 0, renewWindowDays)
	for _, check := range schedule.ScheduledChecks {
		if check.CheckDate.Before(schedule.NextVerificationDate) {
			schedule.NextVerificationDate = check.CheckDate
		}
	}

	return schedule
}

// nextCasierCheck returns the first periodic 3-month checkpoint after now,
// stepping from the submission date.
func nextCasierCheck(submittedAt, now time.Time) time.Time {
	check := submittedAt.AddDate(0, casierValidityMonths, 0)
	for !check.After(now) {
		check = check.AddDate(0, casierValidityMonths, 0)
	}
	return check
}

// GenerateReVerificationTasks turns the renewal plan into actionable tasks
// with priorities and due dates.
func GenerateReVerificationTasks(documents []domain.DriverDocument, now time.Time) []domain.ReVerificationTask {
	tasks := []domain.ReVerificationTask{}

	for _, doc := range documents {
		name := DocumentTypeName(doc.Type)

		if doc.Status == domain.DocumentStatusRejected {
			tasks = append(tasks, domain.ReVerificationTask{
				DocumentType: doc.Type,
				DriverID:     doc.DriverID,
				Action:       domain.TaskActionReUpload,
				Priority:     domain.SeverityHigh,
				DueDate:      now.AddDate(0, 0, urgentWindowDays),
				Description:  fmt.Sprintf("%s was rejected and must be re-uploaded", name),
			})
			continue
		}

		if doc.Type == domain.DocumentTypeCasierJudiciaire {
			if data, ok := doc.Data.(domain.CriminalRecordData); ok &&
				!data.IssueDate.IsZero() &&
				data.IssueDate.Before(now.AddDate(0, -casierValidityMonths, 0)) {
				tasks = append(tasks, domain.ReVerificationTask{
					DocumentType: doc.Type,
					DriverID:     doc.DriverID,
					Action:       domain.TaskActionReVerify,
					Priority:     domain.SeverityMedium,
					DueDate:      now.AddDate(0, 0, 14),
					Description:  fmt.Sprintf("%s is older than %d months and must be reissued", name, casierValidityMonths),
				})
			}
		}

		if doc.ExpiryDate == nil {
			continue
		}

		days := daysUntil(*doc.ExpiryDate, now)
		switch {
		case days < 0 || doc.Status == domain.DocumentStatusExpired:
			tasks = append(tasks, domain.ReVerificationTask{
				DocumentType: doc.Type,
				DriverID:     doc.DriverID,
				Action:       domain.TaskActionRenew,
				Priority:     domain.SeverityCritical,
				DueDate:      now,
				Description:  fmt.Sprintf("%s has expired and must be renewed immediately", name),
			})
		case days <= urgentWindowDays:
			tasks = append(tasks, domain.ReVerificationTask{
				DocumentType: doc.Type,
				DriverID:     doc.DriverID,
				Action:       domain.TaskActionRenew,
				Priority:     domain.SeverityHigh,
				DueDate:      *doc.ExpiryDate,
				Description:  fmt.Sprintf("%s expires in %d day(s)", name, days),
			})
		case days <= renewWindowDays:
			tasks = append(tasks, domain.ReVerificationTask{
				DocumentType: doc.Type,
				DriverID:     doc.DriverID,
				Action:       domain.TaskActionRenew,
				Priority:     domain.SeverityMedium,
				DueDate:      *doc.ExpiryDate,
				Description:  fmt.Sprintf("%s expires in %d day(s)", name, days),
			})
		}
	}

	return tasks
}
