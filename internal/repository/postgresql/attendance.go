package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceEmployeeDateKey = "attendance_records_employee_id_date_key"

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.qr_code_id, a.location,
	a.punch_in, a.punch_out, a.status, a.late_minutes,
	a.conveyance_base, a.conveyance_amount, a.work_hours, a.auto_closed,
	a.created_at, a.updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanRecord(row pgx.Row, extra ...interface{}) (attendance.Record, error) {
	var rec attendance.Record
	var status string
	dest := []interface{}{
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.QRCodeID, &rec.Location,
		&rec.PunchIn, &rec.PunchOut, &status, &rec.LateMinutes,
		&rec.ConveyanceBase, &rec.ConveyanceAmount, &rec.WorkHours, &rec.AutoClosed,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Record{}, err
	}
	rec.Status = attendance.Status(status)
	return rec, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			employee_id, date, qr_code_id, location, punch_in, status,
			late_minutes, conveyance_base, conveyance_amount
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.EmployeeID,
		record.Date,
		record.QRCodeID,
		record.Location,
		record.PunchIn,
		string(record.Status),
		record.LateMinutes,
		record.ConveyanceBase,
		record.ConveyanceAmount,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, attendanceEmployeeDateKey) {
			return attendance.Record{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return record, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records a
		WHERE a.employee_id = $1 AND a.date = $2
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &rec, nil
}

// ClosePunch implements attendance.AttendanceRepository.
func (a *attendanceRepository) ClosePunch(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET punch_out = $2, work_hours = $3, auto_closed = $4, updated_at = NOW()
		WHERE id = $1 AND punch_out IS NULL
	`

	tag, err := q.Exec(ctx, query, record.ID, record.PunchOut, record.WorkHours, record.AutoClosed)
	if err != nil {
		return fmt.Errorf("failed to close attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAlreadyPunchedOut
	}

	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND a.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count total
	countQuery := "SELECT COUNT(*) FROM attendance_records a WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, u.full_name AS employee_name
		FROM attendance_records a
		LEFT JOIN users u ON u.employee_id = a.employee_id
		WHERE %s
		ORDER BY a.date DESC, a.punch_in DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var name *string
		rec, err := scanRecord(rows, &name)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		rec.EmployeeName = name
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, total, nil
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records a
		WHERE a.punch_out IS NULL AND a.date < $1
		ORDER BY a.date ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// MonthlySummary implements attendance.AttendanceRepository.
func (a *attendanceRepository) MonthlySummary(ctx context.Context, month, year int, employeeID *string) ([]attendance.MonthlySummary, error) {
	q := GetQuerier(ctx, a.db)

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	where := "a.date >= $1 AND a.date < $2"
	args := []interface{}{start, end}
	if employeeID != nil && *employeeID != "" {
		where += " AND a.employee_id = $3"
		args = append(args, *employeeID)
	}

	query := fmt.Sprintf(`
		SELECT
			a.employee_id,
			MAX(u.full_name) AS employee_name,
			COUNT(*) FILTER (WHERE a.status = 'full_day') AS full_days,
			COUNT(*) FILTER (WHERE a.status = 'half_day') AS half_days,
			COUNT(*) FILTER (WHERE a.status = 'absent') AS absent_days,
			COALESCE(SUM(a.conveyance_amount), 0) AS total_conveyance,
			COALESCE(SUM(a.work_hours), 0) AS total_work_hours
		FROM attendance_records a
		LEFT JOIN users u ON u.employee_id = a.employee_id
		WHERE %s
		GROUP BY a.employee_id
		ORDER BY a.employee_id
	`, where)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly summary: %w", err)
	}
	defer rows.Close()

	var summaries []attendance.MonthlySummary
	for rows.Next() {
		var s attendance.MonthlySummary
		if err := rows.Scan(
			&s.EmployeeID, &s.EmployeeName,
			&s.FullDays, &s.HalfDays, &s.AbsentDays,
			&s.TotalConveyance, &s.TotalWorkHours,
		); err != nil {
			return nil, fmt.Errorf("failed to scan monthly summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
