// ==============================================================================
// DRIVER REPOSITORY - internal/repository/postgres/driver.go
// ==============================================================================
// PostgreSQL persistence for driver profiles and their compliance documents.
// Document payloads are stored as JSONB and decoded through the typed union.
// ==============================================================================

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"fleetkyc/internal/domain"
	"fleetkyc/pkg/errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DriverRepository implements driver and document persistence.
type DriverRepository struct {
	db *sqlx.DB
}

// NewDriverRepository creates a new DriverRepository.
func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

type driverRow struct {
	ID               uuid.UUID `db:"id"`
	Name             string    `db:"name"`
	DateOfBirth      time.Time `db:"date_of_birth"`
	VehicleType      string    `db:"vehicle_type"`
	RegistrationDate time.Time `db:"registration_date"`
	City             string    `db:"city"`
	PhoneNumber      string    `db:"phone_number"`
}

type documentRow struct {
	ID              uuid.UUID       `db:"id"`
	DriverID        uuid.UUID       `db:"driver_id"`
	Type            string          `db:"type"`
	Status          string          `db:"status"`
	SubmittedAt     time.Time       `db:"submitted_at"`
	ReviewedAt      *time.Time      `db:"reviewed_at"`
	ExpiryDate      *time.Time      `db:"expiry_date"`
	RejectionReason sql.NullString  `db:"rejection_reason"`
	Data            json.RawMessage `db:"document_data"`
	ImageURL        sql.NullString  `db:"document_image_url"`
}

func (row documentRow) toDomain() (domain.DriverDocument, error) {
	doc := domain.DriverDocument{
		ID:              row.ID,
		DriverID:        row.DriverID,
		Type:            domain.DocumentType(row.Type),
		Status:          domain.DocumentStatus(row.Status),
		SubmittedAt:     row.SubmittedAt,
		ReviewedAt:      row.ReviewedAt,
		ExpiryDate:      row.ExpiryDate,
		RejectionReason: row.RejectionReason.String,
		ImageURL:        row.ImageURL.String,
	}

	if len(row.Data) > 0 && string(row.Data) != "null" {
		data, err := domain.DecodeDocumentData(doc.Type, row.Data)
		if err != nil {
			return domain.DriverDocument{}, errors.Wrap(err, "decode document payload")
		}
		doc.Data = data
	}
	return doc, nil
}

// CreateDriver inserts a new driver profile. Documents are persisted
// separately through SaveDocument.
func (r *DriverRepository) CreateDriver(ctx context.Context, profile *domain.DriverProfile) error {
	query := `
		INSERT INTO fleet_schema.drivers (
			id, name, date_of_birth, vehicle_type, registration_date, city, phone_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		profile.DriverID, profile.Name, profile.DateOfBirth, profile.VehicleType,
		profile.RegistrationDate, profile.City, profile.PhoneNumber,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create driver")
	}
	return nil
}

// GetProfile loads a driver together with every submitted document.
func (r *DriverRepository) GetProfile(ctx context.Context, driverID uuid.UUID) (*domain.DriverProfile, error) {
	var row driverRow
	query := `
		SELECT id, name, date_of_birth, vehicle_type, registration_date, city, phone_number
		FROM fleet_schema.drivers
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, driverID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrDriverNotFound
		}
		return nil, errors.Wrap(err, "failed to find driver")
	}

	documents, err := r.findDocuments(ctx, driverID)
	if err != nil {
		return nil, err
	}

	return &domain.DriverProfile{
		DriverID:         row.ID,
		Name:             row.Name,
		DateOfBirth:      row.DateOfBirth,
		VehicleType:      domain.VehicleType(row.VehicleType),
		Documents:        documents,
		RegistrationDate: row.RegistrationDate,
		City:             row.City,
		PhoneNumber:      row.PhoneNumber,
	}, nil
}

func (r *DriverRepository) findDocuments(ctx context.Context, driverID uuid.UUID) ([]domain.DriverDocument, error) {
	var rows []documentRow
	query := `
		SELECT id, driver_id, type, status, submitted_at, reviewed_at, expiry_date,
		       rejection_reason, document_data, document_image_url
		FROM fleet_schema.driver_documents
		WHERE driver_id = $1
		ORDER BY submitted_at ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, driverID); err != nil {
		return nil, errors.Wrap(err, "failed to load driver documents")
	}

	documents := make([]domain.DriverDocument, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	return documents, nil
}

// ListProfiles pages through every driver with documents attached, for fleet
// assessments.
func (r *DriverRepository) ListProfiles(ctx context.Context, limit, offset int) ([]domain.DriverProfile, error) {
	var rows []driverRow
	query := `
		SELECT id, name, date_of_birth, vehicle_type, registration_date, city, phone_number
		FROM fleet_schema.drivers
		ORDER BY registration_date ASC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, errors.Wrap(err, "failed to list drivers")
	}

	profiles := make([]domain.DriverProfile, 0, len(rows))
	for _, row := range rows {
		documents, err := r.findDocuments(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, domain.DriverProfile{
			DriverID:         row.ID,
			Name:             row.Name,
			DateOfBirth:      row.DateOfBirth,
			VehicleType:      domain.VehicleType(row.VehicleType),
			Documents:        documents,
			RegistrationDate: row.RegistrationDate,
			City:             row.City,
			PhoneNumber:      row.PhoneNumber,
		})
	}
	return profiles, nil
}

// CountDrivers returns the total driver count for pagination.
func (r *DriverRepository) CountDrivers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM fleet_schema.drivers`); err != nil {
		return 0, errors.Wrap(err, "failed to count drivers")
	}
	return count, nil
}

// SaveDocument inserts a document submission. Payloads are serialized to
// JSONB; a nil payload is stored as NULL.
func (r *DriverRepository) SaveDocument(ctx context.Context, doc *domain.DriverDocument) error {
	var payload interface{}
	if doc.Data != nil {
		raw, err := json.Marshal(doc.Data)
		if err != nil {
			return errors.Wrap(err, "encode document payload")
		}
		payload = raw
	}

	query := `
		INSERT INTO fleet_schema.driver_documents (
			id, driver_id, type, status, submitted_at, reviewed_at, expiry_date,
			rejection_reason, document_data, document_image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.DriverID, doc.Type, doc.Status, doc.SubmittedAt, doc.ReviewedAt,
		doc.ExpiryDate, nullable(doc.RejectionReason), payload, nullable(doc.ImageURL),
	)
	if err != nil {
		return errors.Wrap(err, "failed to save document")
	}
	return nil
}

// UpdateDocumentStatus records a review decision.
func (r *DriverRepository) UpdateDocumentStatus(ctx context.Context, documentID uuid.UUID, status domain.DocumentStatus, reason string) error {
	query := `
		UPDATE fleet_schema.driver_documents
		SET status = $2, rejection_reason = $3, reviewed_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, documentID, status, nullable(reason))
	if err != nil {
		return errors.Wrap(err, "failed to update document status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if affected == 0 {
		return errors.ErrDocumentNotFound
	}
	return nil
}

// MarkExpiredDocuments flips approved documents whose expiry date has passed.
// Returns the number of documents transitioned.
func (r *DriverRepository) MarkExpiredDocuments(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE fleet_schema.driver_documents
		SET status = $1
		WHERE status = $2 AND expiry_date IS NOT NULL AND expiry_date < $3
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.DocumentStatusExpired, domain.DocumentStatusApproved, now)
	if err != nil {
		return 0, errors.Wrap(err, "failed to mark expired documents")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to check expiry sweep result")
	}
	return affected, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
