// Seeding tool for local development: creates a few drivers with document
// sets in different compliance states.
//
// Reads DATABASE_URL via fleetkyc/pkg/config.
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"fleetkyc/internal/domain"
	"fleetkyc/internal/repository/postgres"
	"fleetkyc/pkg/config"
	"fleetkyc/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("seed-drivers")

	cfg := config.Load()
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required", nil)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	repo := postgres.NewDriverRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	// A fully compliant motorcycle courier.
	compliant := domain.DriverProfile{
		DriverID:         uuid.New(),
		Name:             "Youssef El Amrani",
		DateOfBirth:      time.Date(1995, 6, 20, 0, 0, 0, 0, time.UTC),
		VehicleType:      domain.VehicleTypeMotorcycle,
		RegistrationDate: now.AddDate(0, -3, 0),
		City:             "Casablanca",
		PhoneNumber:      "+212612345678",
	}
	seedDriver(ctx, repo, log, compliant)

	farOut := now.AddDate(1, 0, 0)
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, &farOut, domain.CNIEData{
		CNIENumber:  "AB123456",
		FullName:    compliant.Name,
		DateOfBirth: compliant.DateOfBirth,
		IssueDate:   now.AddDate(-2, 0, 0),
		ExpiryDate:  farOut,
	})
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, &farOut, domain.DrivingLicenseData{
		LicenseNumber: "1234567",
		Category:      "A",
		HolderName:    compliant.Name,
		DateOfBirth:   compliant.DateOfBirth,
		IssueDate:     now.AddDate(-3, 0, 0),
		ExpiryDate:    farOut,
	})
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, &farOut, domain.InsuranceData{
		PolicyNumber:   "POL778899",
		Insurer:        "Wafa Assurance",
		StartDate:      now.AddDate(0, -6, 0),
		ExpiryDate:     farOut,
		HasRC:          true,
		CoverageAmount: decimal.NewFromInt(150000),
	})
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, nil, domain.AutoEntrepreneurData{
		RegistrationNumber:  "20240012345",
		ICENumber:           "001234567890123",
		IsActive:            true,
		RegistrationDate:    now.AddDate(-1, 0, 0),
		ActivityDescription: "Livraison de repas et colis",
	})
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, &farOut, domain.VehicleInspectionData{
		CenterCode:     "CT-042",
		Result:         domain.InspectionResultPass,
		InspectionDate: now.AddDate(0, -2, 0),
		ExpiryDate:     farOut,
		VehicleYear:    2022,
	})
	medicalExpiry := now.AddDate(0, 10, 0)
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, &medicalExpiry, domain.MedicalCertificateData{
		DoctorName:   "Dr. Benali",
		IsFitToDrive: true,
		IssueDate:    now.AddDate(0, -1, 0),
		ExpiryDate:   medicalExpiry,
	})
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, nil, domain.CriminalRecordData{
		BulletinNumber: "B3-20260115-0042",
		IssueDate:      now.AddDate(0, -1, 0),
	})
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, nil, domain.SelfieVerificationData{
		FaceMatchScore: 0.96,
		LivenessScore:  0.93,
		CapturedAt:     now.Add(-3 * time.Hour),
	})
	seedDocument(ctx, repo, log, compliant.DriverID, domain.DocumentStatusApproved, &farOut, domain.VehicleRegistrationData{
		PlateNumber:           "12345-A-6",
		OwnerName:             compliant.Name,
		Brand:                 "Yamaha",
		Model:                 "YBR 125",
		FirstRegistrationDate: now.AddDate(-3, 0, 0),
		ExpiryDate:            farOut,
	})

	// A bicycle courier mid-onboarding: two documents in, three missing.
	partial := domain.DriverProfile{
		DriverID:         uuid.New(),
		Name:             "Imane Berrada",
		DateOfBirth:      time.Date(1999, 2, 10, 0, 0, 0, 0, time.UTC),
		VehicleType:      domain.VehicleTypeBicycle,
		RegistrationDate: now.AddDate(0, 0, -10),
		City:             "Rabat",
		PhoneNumber:      "+212698765432",
	}
	seedDriver(ctx, repo, log, partial)

	cnieExpiry := now.AddDate(3, 0, 0)
	seedDocument(ctx, repo, log, partial.DriverID, domain.DocumentStatusApproved, &cnieExpiry, domain.CNIEData{
		CNIENumber:  "K9876543",
		FullName:    partial.Name,
		DateOfBirth: partial.DateOfBirth,
		IssueDate:   now.AddDate(-1, 0, 0),
		ExpiryDate:  cnieExpiry,
	})
	seedDocument(ctx, repo, log, partial.DriverID, domain.DocumentStatusPending, nil, domain.SelfieVerificationData{
		FaceMatchScore: 0.91,
		LivenessScore:  0.88,
		CapturedAt:     now.Add(-30 * time.Minute),
	})

	// A car driver with insurance about to lapse.
	expiring := domain.DriverProfile{
		DriverID:         uuid.New(),
		Name:             "Omar Tazi",
		DateOfBirth:      time.Date(1988, 11, 3, 0, 0, 0, 0, time.UTC),
		VehicleType:      domain.VehicleTypeCar,
		RegistrationDate: now.AddDate(-1, 0, 0),
		City:             "Marrakech",
		PhoneNumber:      "+212655443322",
	}
	seedDriver(ctx, repo, log, expiring)

	soon := now.AddDate(0, 0, 5)
	seedDocument(ctx, repo, log, expiring.DriverID, domain.DocumentStatusApproved, &soon, domain.InsuranceData{
		PolicyNumber:   "POL554433",
		Insurer:        "AXA Assurance Maroc",
		StartDate:      now.AddDate(-1, 0, 5),
		ExpiryDate:     soon,
		HasRC:          true,
		CoverageAmount: decimal.NewFromInt(80000),
	})

	log.Info("Seeding complete", map[string]interface{}{
		"drivers": 3,
	})
}

func seedDriver(ctx context.Context, repo *postgres.DriverRepository, log logger.Logger, profile domain.DriverProfile) {
	if err := repo.CreateDriver(ctx, &profile); err != nil {
		log.Fatal("Failed to seed driver", map[string]interface{}{
			"error": err.Error(),
			"name":  profile.Name,
		})
	}
	log.Info("Seeded driver", map[string]interface{}{
		"driver_id":    profile.DriverID.String(),
		"vehicle_type": profile.VehicleType,
	})
}

func seedDocument(ctx context.Context, repo *postgres.DriverRepository, log logger.Logger, driverID uuid.UUID, status domain.DocumentStatus, expiry *time.Time, data domain.DocumentData) {
	doc := domain.DriverDocument{
		ID:          uuid.New(),
		DriverID:    driverID,
		Type:        data.Type(),
		Status:      status,
		SubmittedAt: time.Now().UTC(),
		ExpiryDate:  expiry,
		Data:        data,
	}
	if err := repo.SaveDocument(ctx, &doc); err != nil {
		log.Fatal("Failed to seed document", map[string]interface{}{
			"error": err.Error(),
			"type":  doc.Type,
		})
	}
}
