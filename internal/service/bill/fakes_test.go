package bill

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/bill"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/notification"
)

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBillRepo struct {
	mu        sync.Mutex
	bills     map[string]bill.Bill
	decisions map[string][]bill.Decision
	seq       int
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: map[string]bill.Bill{}, decisions: map[string][]bill.Decision{}}
}

func (f *fakeBillRepo) Create(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = fmt.Sprintf("bill-%d", f.seq)
	b.Version = 1
	b.CreatedAt = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	b.UpdatedAt = b.CreatedAt
	items := make([]bill.Item, len(b.Items))
	for i, it := range b.Items {
		it.ID = fmt.Sprintf("%s-item-%d", b.ID, i+1)
		it.BillID = b.ID
		items[i] = it
	}
	b.Items = items
	f.bills[b.ID] = b
	return b, nil
}

func (f *fakeBillRepo) GetByID(ctx context.Context, id string) (bill.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[id]
	if !ok {
		return bill.Bill{}, bill.ErrBillNotFound
	}
	return b, nil
}

func (f *fakeBillRepo) UpdateDecision(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.bills[b.ID]
	if !ok || stored.Version != b.Version {
		return bill.Bill{}, bill.ErrConcurrentUpdate
	}
	b.Version++
	f.bills[b.ID] = b
	return b, nil
}

func (f *fakeBillRepo) List(ctx context.Context, filter bill.BillFilter) ([]bill.Bill, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bill.Bill
	for i := 1; i <= f.seq; i++ {
		b, ok := f.bills[fmt.Sprintf("bill-%d", i)]
		if !ok {
			continue
		}
		if filter.EmployeeID != nil && b.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(b.Status) != *filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBillRepo) AddDecision(ctx context.Context, d bill.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions[d.BillID] = append(f.decisions[d.BillID], d)
	return nil
}

func (f *fakeBillRepo) ListDecisions(ctx context.Context, billID string) ([]bill.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bill.Decision(nil), f.decisions[billID]...), nil
}

type fakeFileService struct {
	files map[string]string
}

func (f *fakeFileService) UploadBillAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("bills/%s/2024-03/%s", employeeID, strings.ToLower(filename))
	f.files[key] = string(body)
	return key, nil
}

func (f *fakeFileService) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.files[key])), nil
}

func (f *fakeFileService) FileExists(ctx context.Context, key string) (bool, error) {
	_, ok := f.files[key]
	return ok, nil
}

func (f *fakeFileService) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "http://files.test/" + key, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeNotifier) last() notification.CreateNotificationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}
