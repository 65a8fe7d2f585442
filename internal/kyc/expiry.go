// ==============================================================================
// EXPIRY MONITOR - internal/kyc/expiry.go
// ==============================================================================

package kyc

import (
	"fmt"
	"sort"
	"time"

	"fleetkyc/internal/domain"
)

// expiryThresholds are the alerting windows in days; a document produces
// exactly one alert at the tightest threshold it falls under, with severity
// assigned by severityForDays.
var expiryThresholds = []int{30, 15, 7, 1}

func severityForDays(days int) domain.Severity {
	switch {
	case days <= 1:
		return domain.SeverityCritical
	case days <= 7:
		return domain.SeverityHigh
	case days <= 15:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

var severityRank = map[domain.Severity]int{
	domain.SeverityCritical: 0,
	domain.SeverityHigh:     1,
	domain.SeverityMedium:   2,
	domain.SeverityLow:      3,
}

// CheckDocumentExpiry scans every non-rejected document carrying an expiry
// date and emits severity-ranked alerts relative to now. Documents with more
// than 30 days remaining produce no alert.
func CheckDocumentExpiry(documents []domain.DriverDocument, now time.Time) []domain.ExpiryAlert {
	alerts := []domain.ExpiryAlert{}

	for _, doc := range documents {
		if doc.ExpiryDate == nil || doc.Status == domain.DocumentStatusRejected {
			continue
		}

		days := daysUntil(*doc.ExpiryDate, now)
		name := DocumentTypeName(doc.Type)

		if days < 0 {
			alerts = append(alerts, domain.ExpiryAlert{
				DocumentType:    doc.Type,
				DriverID:        doc.DriverID,
				ExpiryDate:      *doc.ExpiryDate,
				DaysUntilExpiry: days,
				Severity:        domain.SeverityCritical,
				Message:         fmt.Sprintf("%s expired %d day(s) ago", name, -days),
			})
			continue
		}

		if days > expiryThresholds[0] {
			continue
		}

		alerts = append(alerts, domain.ExpiryAlert{
			DocumentType:    doc.Type,
			DriverID:        doc.DriverID,
			ExpiryDate:      *doc.ExpiryDate,
			DaysUntilExpiry: days,
			Severity:        severityForDays(days),
			Message:         fmt.Sprintf("%s expires in %d day(s)", name, days),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if severityRank[alerts[i].Severity] != severityRank[alerts[j].Severity] {
			return severityRank[alerts[i].Severity] < severityRank[alerts[j].Severity]
		}
		return alerts[i].DaysUntilExpiry < alerts[j].DaysUntilExpiry
	})

	return alerts
}

// daysUntil returns whole days from now until t, negative when t is past.
func daysUntil(t, now time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}
