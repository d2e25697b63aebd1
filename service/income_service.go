package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"replyboost-backend/models"
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
)

// IncomeService manages income records linked to won proposals
type IncomeService struct {
	users  UserStore
	income IncomeStore
}

// IncomeServiceOption is a functional option for IncomeService
type IncomeServiceOption func(*IncomeService)

// IncomeWithUserStore sets the user store
func IncomeWithUserStore(store UserStore) IncomeServiceOption {
	return func(s *IncomeService) {
		s.users = store
	}
}

// IncomeWithStore sets the income store
func IncomeWithStore(store IncomeStore) IncomeServiceOption {
	return func(s *IncomeService) {
		s.income = store
	}
}

// NewIncomeService creates a new income service
func NewIncomeService(opts ...IncomeServiceOption) *IncomeService {
	s := &IncomeService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddIncomeRequest represents a new income entry
type AddIncomeRequest struct {
	UserEmail string
	Amount    float64
	Client    string
	Platform  string
	Date      string
}

// Add records an income entry. A missing date defaults to today.
func (s *IncomeService) Add(ctx context.Context, req AddIncomeRequest) (*models.IncomeRecord, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.income == nil {
		return nil, errors.New("income store not set")
	}

	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	record := &models.IncomeRecord{
		UserID:   user.ID,
		Amount:   req.Amount,
		Client:   strings.TrimSpace(req.Client),
		Platform: strings.TrimSpace(req.Platform),
		Date:     date,
	}
	if err := s.income.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save income record: %w", err)
	}

	return record, nil
}

// List returns the user's income records, newest first
func (s *IncomeService) List(ctx context.Context, userEmail string) ([]*models.IncomeRecord, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.income == nil {
		return nil, errors.New("income store not set")
	}

	user, err := s.users.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return s.income.ListByUserID(ctx, user.ID)
}

// IncomeSummaryResult represents monthly aggregated income
type IncomeSummaryResult struct {
	Months []models.MonthlyTotal
	Total  float64
}

// Summary aggregates income totals per calendar month
func (s *IncomeService) Summary(ctx context.Context, userEmail string) (*IncomeSummaryResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.income == nil {
		return nil, errors.New("income store not set")
	}

	user, err := s.users.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	months, err := s.income.MonthlyTotals(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, m := range months {
		total += m.Total
	}

	return &IncomeSummaryResult{Months: months, Total: total}, nil
}
