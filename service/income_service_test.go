package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"replyboost-backend/models"

	"github.com/google/uuid"
)

// fakeIncomeStore keeps income records in memory
type fakeIncomeStore struct {
	records []*models.IncomeRecord
}

func (f *fakeIncomeStore) Create(ctx context.Context, record *models.IncomeRecord) error {
	record.ID = uuid.New()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeIncomeStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.IncomeRecord, error) {
	result := make([]*models.IncomeRecord, 0)
	for _, r := range f.records {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeIncomeStore) MonthlyTotals(ctx context.Context, userID uuid.UUID) ([]models.MonthlyTotal, error) {
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range f.records {
		if r.UserID != userID {
			continue
		}
		month := r.Date[:7]
		if _, ok := totals[month]; !ok {
			order = append(order, month)
		}
		totals[month] += r.Amount
	}

	result := make([]models.MonthlyTotal, 0, len(order))
	for _, month := range order {
		result = append(result, models.MonthlyTotal{Month: month, Total: totals[month]})
	}
	return result, nil
}

func newTestIncomeService(users *fakeUserStore, income *fakeIncomeStore) *IncomeService {
	return NewIncomeService(
		IncomeWithUserStore(users),
		IncomeWithStore(income),
	)
}

func TestAddIncome(t *testing.T) {
	user := newTestUser(models.PlanFree)
	service := newTestIncomeService(&fakeUserStore{user: user}, &fakeIncomeStore{})

	record, err := service.Add(context.Background(), AddIncomeRequest{
		UserEmail: user.Email,
		Amount:    250.50,
		Client:    " Acme Corp ",
		Platform:  "upwork",
		Date:      "2026-08-15",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Client != "Acme Corp" {
		t.Errorf("expected trimmed client name, got %q", record.Client)
	}
	if record.Date != "2026-08-15" {
		t.Errorf("expected date preserved, got %q", record.Date)
	}
}

func TestAddIncomeDefaultsDateToToday(t *testing.T) {
	user := newTestUser(models.PlanFree)
	service := newTestIncomeService(&fakeUserStore{user: user}, &fakeIncomeStore{})

	record, err := service.Add(context.Background(), AddIncomeRequest{
		UserEmail: user.Email,
		Amount:    100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Now().UTC().Format("2006-01-02")
	if record.Date != want {
		t.Errorf("expected today %q, got %q", want, record.Date)
	}
}

func TestAddIncomeValidation(t *testing.T) {
	user := newTestUser(models.PlanFree)
	service := newTestIncomeService(&fakeUserStore{user: user}, &fakeIncomeStore{})

	_, err := service.Add(context.Background(), AddIncomeRequest{
		UserEmail: user.Email,
		Amount:    -5,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = service.Add(context.Background(), AddIncomeRequest{
		UserEmail: user.Email,
		Amount:    100,
		Date:      "15/08/2026",
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestIncomeSummary(t *testing.T) {
	user := newTestUser(models.PlanFree)
	income := &fakeIncomeStore{}
	service := newTestIncomeService(&fakeUserStore{user: user}, income)

	for _, entry := range []struct {
		amount float64
		date   string
	}{
		{500, "2026-07-01"},
		{250, "2026-07-20"},
		{1000, "2026-08-05"},
	} {
		if _, err := service.Add(context.Background(), AddIncomeRequest{
			UserEmail: user.Email,
			Amount:    entry.amount,
			Date:      entry.date,
		}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	summary, err := service.Summary(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Total != 1750 {
		t.Errorf("expected total 1750, got %v", summary.Total)
	}
	if len(summary.Months) != 2 {
		t.Fatalf("expected two months, got %d", len(summary.Months))
	}

	byMonth := make(map[string]float64)
	for _, m := range summary.Months {
		byMonth[m.Month] = m.Total
	}
	if byMonth["2026-07"] != 750 {
		t.Errorf("expected 750 for 2026-07, got %v", byMonth["2026-07"])
	}
	if byMonth["2026-08"] != 1000 {
		t.Errorf("expected 1000 for 2026-08, got %v", byMonth["2026-08"])
	}
}
