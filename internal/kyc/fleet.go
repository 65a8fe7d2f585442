// ==============================================================================
// FLEET AGGREGATOR - internal/kyc/fleet.go
// ==============================================================================

package kyc

import (
	"sort"

	"fleetkyc/internal/domain"
)

// partialComplianceThreshold is the completion percentage at which a driver
// counts as partially compliant.
const partialComplianceThreshold = 50

// GetFleetKYCStats computes fleet-wide compliance statistics over assessment
// results. An empty input yields an all-zero, fully-initialized result.
func GetFleetKYCStats(results []domain.KYCResult) domain.FleetKYCStats {
	stats := domain.FleetKYCStats{
		TotalDrivers: len(results),
		DocumentsByStatus: map[domain.DocumentStatus]int{
			domain.DocumentStatusPending:  0,
			domain.DocumentStatusApproved: 0,
			domain.DocumentStatusRejected: 0,
			domain.DocumentStatusExpired:  0,
		},
		RiskDistribution: map[domain.Severity]int{
			domain.SeverityLow:      0,
			domain.SeverityMedium:   0,
			domain.SeverityHigh:     0,
			domain.SeverityCritical: 0,
		},
		StageDistribution:    map[domain.VerificationStageName]int{},
		MostMissingDocuments: []domain.DocumentTypeCount{},
	}

	missingCounts := map[domain.DocumentType]int{}

	for _, result := range results {
		switch {
		case result.Eligible && result.Progress.IsComplete:
			stats.FullyCompliant++
		case result.Progress.CompletionPercentage >= partialComplianceThreshold:
			stats.PartiallyCompliant++
		default:
			stats.NonCompliant++
		}

		stats.DocumentsByStatus[domain.DocumentStatusApproved] += result.Progress.ApprovedCount
		stats.DocumentsByStatus[domain.DocumentStatusRejected] += result.Progress.RejectedCount
		stats.DocumentsByStatus[domain.DocumentStatusExpired] += result.Progress.ExpiredCount
		stats.DocumentsByStatus[domain.DocumentStatusPending] += result.Progress.PendingCount

		// Counted per alert, not per driver. Already-expired documents are
		// not "expiring"; they show up in the expired document counts.
		for _, alert := range result.Alerts {
			if alert.DaysUntilExpiry < 0 {
				continue
			}
			if alert.DaysUntilExpiry <= 30 {
				stats.ExpiringWithin30Days++
			}
			if alert.DaysUntilExpiry <= 7 {
				stats.ExpiringWithin7Days++
			}
		}

		stats.RiskDistribution[result.OverallRisk]++
		stats.StageDistribution[result.Stage.Stage]++

		for _, missing := range result.Progress.MissingDocuments {
			missingCounts[missing]++
		}
	}

	for docType, count := range missingCounts {
		stats.MostMissingDocuments = append(stats.MostMissingDocuments, domain.DocumentTypeCount{
			Type:  docType,
			Count: count,
		})
	}
	sort.SliceStable(stats.MostMissingDocuments, func(i, j int) bool {
		if stats.MostMissingDocuments[i].Count != stats.MostMissingDocuments[j].Count {
			return stats.MostMissingDocuments[i].Count > stats.MostMissingDocuments[j].Count
		}
		return stats.MostMissingDocuments[i].Type < stats.MostMissingDocuments[j].Type
	})

	return stats
}
