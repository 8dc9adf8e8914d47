package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type qrCodeRepositoryImpl struct {
	db *database.DB
}

func NewQRCodeRepository(db *database.DB) attendance.QRCodeRepository {
	return &qrCodeRepositoryImpl{db: db}
}

// Create implements attendance.QRCodeRepository.
func (r *qrCodeRepositoryImpl) Create(ctx context.Context, code attendance.QRCode) (attendance.QRCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO qr_codes (date, shift_start, shift_end, shift_type, location, conveyance_base, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		code.Date,
		code.Shift.Start.String(),
		code.Shift.End.String(),
		string(code.Shift.Type),
		code.Location,
		code.ConveyanceBase,
		code.CreatedBy,
	).Scan(&code.ID, &code.CreatedAt)
	if err != nil {
		return attendance.QRCode{}, fmt.Errorf("failed to create qr code: %w", err)
	}

	return code, nil
}

// GetByID implements attendance.QRCodeRepository.
func (r *qrCodeRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.QRCode, error) {
	// a non-UUID can never match the id column
	if uuid.Validate(id) != nil {
		return attendance.QRCode{}, attendance.ErrQRCodeNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, date, shift_start, shift_end, shift_type, location, conveyance_base, created_by, created_at
		FROM qr_codes
		WHERE id = $1
	`

	var (
		code               attendance.QRCode
		shiftStart, endStr string
		shiftType          string
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&code.ID, &code.Date, &shiftStart, &endStr, &shiftType,
		&code.Location, &code.ConveyanceBase, &code.CreatedBy, &code.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.QRCode{}, attendance.ErrQRCodeNotFound
		}
		return attendance.QRCode{}, fmt.Errorf("failed to get qr code by ID: %w", err)
	}

	start, err := attendance.ParseTimeOfDay(shiftStart)
	if err != nil {
		return attendance.QRCode{}, fmt.Errorf("qr code %s: %w", id, err)
	}
	end, err := attendance.ParseTimeOfDay(endStr)
	if err != nil {
		return attendance.QRCode{}, fmt.Errorf("qr code %s: %w", id, err)
	}
	code.Shift = attendance.ShiftWindow{Start: start, End: end, Type: attendance.ShiftType(shiftType)}

	return code, nil
}
