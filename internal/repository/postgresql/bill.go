package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const billColumns = `
	b.id, b.employee_id, b.month, b.year,
	b.total_amount, b.approved_amount, b.remaining_balance, b.rejected_amount,
	b.status, b.rejection_reason, b.version, b.created_at, b.updated_at`

type billRepositoryImpl struct {
	db *database.DB
}

func NewBillRepository(db *database.DB) bill.BillRepository {
	return &billRepositoryImpl{db: db}
}

func scanBill(row pgx.Row, extra ...interface{}) (bill.Bill, error) {
	var b bill.Bill
	var status string
	dest := []interface{}{
		&b.ID, &b.EmployeeID, &b.Month, &b.Year,
		&b.TotalAmount, &b.ApprovedAmount, &b.RemainingBalance, &b.RejectedAmount,
		&status, &b.RejectionReason, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return bill.Bill{}, err
	}
	b.Status = bill.Status(status)
	return b, nil
}

// Create implements bill.BillRepository. Callers run it inside a transaction
// so the bill and its items land together.
func (r *billRepositoryImpl) Create(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO bills (
			employee_id, month, year, total_amount, approved_amount,
			remaining_balance, rejected_amount, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		b.EmployeeID,
		b.Month,
		b.Year,
		b.TotalAmount,
		b.ApprovedAmount,
		b.RemainingBalance,
		b.RejectedAmount,
		string(b.Status),
	).Scan(&b.ID, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("failed to create bill: %w", err)
	}

	itemQuery := `
		INSERT INTO bill_items (bill_id, date, location, description, amount, attachment_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	items := make([]bill.Item, len(b.Items))
	for i, item := range b.Items {
		item.BillID = b.ID
		if err := q.QueryRow(ctx, itemQuery,
			item.BillID,
			item.Date,
			item.Location,
			item.Description,
			item.Amount,
			item.AttachmentRef,
		).Scan(&item.ID); err != nil {
			return bill.Bill{}, fmt.Errorf("failed to create bill item %d: %w", i, err)
		}
		items[i] = item
	}
	b.Items = items

	return b, nil
}

// GetByID implements bill.BillRepository.
func (r *billRepositoryImpl) GetByID(ctx context.Context, id string) (bill.Bill, error) {
	// a non-UUID can never match the id column
	if uuid.Validate(id) != nil {
		return bill.Bill{}, bill.ErrBillNotFound
	}

	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + billColumns + `, u.full_name AS employee_name
		FROM bills b
		LEFT JOIN users u ON u.employee_id = b.employee_id
		WHERE b.id = $1
	`

	var name *string
	b, err := scanBill(q.QueryRow(ctx, query, id), &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bill.Bill{}, bill.ErrBillNotFound
		}
		return bill.Bill{}, fmt.Errorf("failed to get bill by ID: %w", err)
	}
	b.EmployeeName = name

	items, err := r.itemsFor(ctx, []string{b.ID})
	if err != nil {
		return bill.Bill{}, err
	}
	b.Items = items[b.ID]

	return b, nil
}

// itemsFor loads the items of every bill in ids, keyed by bill id.
func (r *billRepositoryImpl) itemsFor(ctx context.Context, ids []string) (map[string][]bill.Item, error) {
	result := make(map[string][]bill.Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, bill_id, date, location, description, amount, attachment_ref
		FROM bill_items
		WHERE bill_id = ANY($1)
		ORDER BY date ASC, created_at ASC
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item bill.Item
		if err := rows.Scan(
			&item.ID, &item.BillID, &item.Date, &item.Location,
			&item.Description, &item.Amount, &item.AttachmentRef,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		result[item.BillID] = append(result[item.BillID], item)
	}

	return result, rows.Err()
}

// UpdateDecision implements bill.BillRepository.
func (r *billRepositoryImpl) UpdateDecision(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE bills
		SET approved_amount = $3,
			remaining_balance = $4,
			rejected_amount = $5,
			status = $6,
			rejection_reason = $7,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		b.ID,
		b.Version,
		b.ApprovedAmount,
		b.RemainingBalance,
		b.RejectedAmount,
		string(b.Status),
		b.RejectionReason,
	).Scan(&b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bill.Bill{}, bill.ErrConcurrentUpdate
		}
		return bill.Bill{}, fmt.Errorf("failed to update bill: %w", err)
	}

	return b, nil
}

// List implements bill.BillRepository.
func (r *billRepositoryImpl) List(ctx context.Context, filter bill.BillFilter) ([]bill.Bill, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND b.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND b.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Month != nil {
		baseWhere += fmt.Sprintf(" AND b.month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		baseWhere += fmt.Sprintf(" AND b.year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM bills b WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, u.full_name AS employee_name
		FROM bills b
		LEFT JOIN users u ON u.employee_id = b.employee_id
		WHERE %s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d
	`, billColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bills: %w", err)
	}

	var (
		bills []bill.Bill
		ids   []string
	)
	for rows.Next() {
		var name *string
		b, err := scanBill(rows, &name)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.EmployeeName = name
		bills = append(bills, b)
		ids = append(ids, b.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate bills: %w", err)
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range bills {
		bills[i].Items = items[bills[i].ID]
	}

	return bills, total, nil
}

// AddDecision implements bill.BillRepository.
func (r *billRepositoryImpl) AddDecision(ctx context.Context, d bill.Decision) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO bill_decisions (id, bill_id, action, amount, reason, from_status, to_status, decided_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var from *string
	if d.FromStatus != nil {
		s := string(*d.FromStatus)
		from = &s
	}

	_, err := q.Exec(ctx, query,
		d.ID,
		d.BillID,
		string(d.Action),
		d.Amount,
		d.Reason,
		from,
		string(d.ToStatus),
		d.DecidedBy,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record bill decision: %w", err)
	}

	return nil
}

// ListDecisions implements bill.BillRepository.
func (r *billRepositoryImpl) ListDecisions(ctx context.Context, billID string) ([]bill.Decision, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, bill_id, action, amount, reason, from_status, to_status, decided_by, created_at
		FROM bill_decisions
		WHERE bill_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill decisions: %w", err)
	}
	defer rows.Close()

	var decisions []bill.Decision
	for rows.Next() {
		var (
			d          bill.Decision
			action, to string
			fromStatus *string
		)
		if err := rows.Scan(
			&d.ID, &d.BillID, &action, &d.Amount, &d.Reason,
			&fromStatus, &to, &d.DecidedBy, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bill decision: %w", err)
		}
		d.Action = bill.Action(action)
		d.ToStatus = bill.Status(to)
		if fromStatus != nil {
			s := bill.Status(*fromStatus)
			d.FromStatus = &s
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}
