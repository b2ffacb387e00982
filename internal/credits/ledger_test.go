package credits

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"mugshot/internal/domain"
)

type memUsers struct {
	mu       sync.Mutex
	balances map[string]int
	failNext error
}

func newMemUsers(balances map[string]int) *memUsers {
	return &memUsers{balances: balances}
}

func (m *memUsers) DebitCredits(ctx context.Context, userID string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	balance, ok := m.balances[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if balance < amount {
		return domain.ErrInsufficientCredits
	}
	m.balances[userID] = balance - amount
	return nil
}

func (m *memUsers) CreditCredits(ctx context.Context, userID string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.balances[userID] += amount
	return nil
}

func (m *memUsers) Credits(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.balances[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return balance, nil
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) error  { return nil }
func (m *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (m *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (m *memUsers) UpdateProfile(ctx context.Context, user *domain.User) error { return nil }
func (m *memUsers) SetVerified(ctx context.Context, id string) error           { return nil }
func (m *memUsers) Delete(ctx context.Context, id string) error                { return nil }

type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (m *memAudit) Append(ctx context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudit) ListByUser(ctx context.Context, userID string, limit int) ([]domain.AuditEntry, error) {
	return nil, nil
}

func (m *memAudit) SumDeltas(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, e := range m.entries {
		if e.UserID == userID {
			sum += e.DeltaCredits
		}
	}
	return sum, nil
}

func (m *memAudit) CountByJobAction(ctx context.Context, jobID, action string) (int, error) {
	return 0, nil
}

func (m *memAudit) ActiveUserIDs(ctx context.Context, sinceHours int) ([]string, error) {
	return nil, nil
}

func (m *memAudit) actions(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e.Action)
		}
	}
	return out
}

func TestLedgerDebit(t *testing.T) {
	users := newMemUsers(map[string]int{"u1": 50})
	audit := &memAudit{}
	ledger := NewLedger(users, audit, zerolog.Nop())

	if err := ledger.Debit(context.Background(), "u1", 10, "job-1", "generation"); err != nil {
		t.Fatalf("Debit() unexpected error: %v", err)
	}
	if balance, _ := users.Credits(context.Background(), "u1"); balance != 40 {
		t.Fatalf("balance = %d, want 40", balance)
	}
	actions := audit.actions("u1")
	if len(actions) != 1 || actions[0] != domain.AuditActionDeductCredits {
		t.Fatalf("audit actions = %v, want one deduct_credits", actions)
	}
}

func TestLedgerDebitInsufficient(t *testing.T) {
	users := newMemUsers(map[string]int{"u1": 5})
	audit := &memAudit{}
	ledger := NewLedger(users, audit, zerolog.Nop())

	err := ledger.Debit(context.Background(), "u1", 10, "job-1", "generation")
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("Debit() error = %v, want ErrInsufficientCredits", err)
	}
	if balance, _ := users.Credits(context.Background(), "u1"); balance != 5 {
		t.Fatalf("balance changed to %d on failed debit", balance)
	}
	if len(audit.actions("u1")) != 0 {
		t.Fatalf("failed debit left audit rows: %v", audit.actions("u1"))
	}
}

func TestLedgerRefundRetries(t *testing.T) {
	users := newMemUsers(map[string]int{"u1": 0})
	users.failNext = errors.New("transient")
	audit := &memAudit{}
	ledger := NewLedger(users, audit, zerolog.Nop())

	ledger.Refund(context.Background(), "u1", 10, "job-1", "provider failure")
	if balance, _ := users.Credits(context.Background(), "u1"); balance != 10 {
		t.Fatalf("balance = %d, want 10 after retried refund", balance)
	}
	actions := audit.actions("u1")
	if len(actions) != 1 || actions[0] != domain.AuditActionRefundCredits {
		t.Fatalf("audit actions = %v, want one refund_credits", actions)
	}
}

func TestLedgerDebitRefundReconciles(t *testing.T) {
	users := newMemUsers(map[string]int{"u1": 50})
	audit := &memAudit{}
	ledger := NewLedger(users, audit, zerolog.Nop())

	if err := ledger.Grant(context.Background(), "u1", 25, domain.AuditActionSignupGrant, nil); err != nil {
		t.Fatalf("Grant() error: %v", err)
	}
	if err := ledger.Debit(context.Background(), "u1", 15, "job-1", "generation"); err != nil {
		t.Fatalf("Debit() error: %v", err)
	}
	ledger.Refund(context.Background(), "u1", 15, "job-1", "provider failure")

	sum, _ := audit.SumDeltas(context.Background(), "u1")
	if sum != 25 {
		t.Fatalf("ledger sum = %d, want 25", sum)
	}
	if balance, _ := users.Credits(context.Background(), "u1"); balance != 75 {
		t.Fatalf("balance = %d, want 75", balance)
	}
}
