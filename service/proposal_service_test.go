package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"replyboost-backend/models"

	"github.com/google/uuid"
)

// fakeUserStore serves a single user and simulates the conditional quota
// reservation against in-memory counters
type fakeUserStore struct {
	user        *models.User
	createErr   error
	reserveErr  error
	refundErr   error
	refundCalls int
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = uuid.New()
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, errors.New("no rows")
	}
	copied := *f.user
	return &copied, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, errors.New("no rows")
	}
	copied := *f.user
	return &copied, nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, id uuid.UUID, profile models.UserProfile) error {
	f.user.Profile = profile
	return nil
}

func (f *fakeUserStore) ReserveDailyUsage(ctx context.Context, id uuid.UUID, day string, limit int) (int, bool, error) {
	if f.reserveErr != nil {
		return 0, false, f.reserveErr
	}
	if f.user.LastUsageDate != day {
		f.user.DailyUsage = 0
		f.user.LastUsageDate = day
	}
	if f.user.DailyUsage >= limit {
		return 0, false, nil
	}
	f.user.DailyUsage++
	return f.user.DailyUsage, true, nil
}

func (f *fakeUserStore) RefundDailyUsage(ctx context.Context, id uuid.UUID, day string) error {
	f.refundCalls++
	if f.refundErr != nil {
		return f.refundErr
	}
	if f.user.LastUsageDate == day && f.user.DailyUsage > 0 {
		f.user.DailyUsage--
	}
	return nil
}

// fakeProposalStore keeps proposals in memory
type fakeProposalStore struct {
	proposals []*models.Proposal
	daily     []models.DailyCount
	createErr error
}

func (f *fakeProposalStore) Create(ctx context.Context, proposal *models.Proposal) error {
	if f.createErr != nil {
		return f.createErr
	}
	proposal.ID = uuid.New()
	proposal.CreatedAt = time.Now().UTC()
	f.proposals = append(f.proposals, proposal)
	return nil
}

func (f *fakeProposalStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Proposal, error) {
	result := make([]*models.Proposal, 0)
	for _, p := range f.proposals {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeProposalStore) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.ProposalStatus) (bool, error) {
	for _, p := range f.proposals {
		if p.ID == id && p.UserID == userID {
			p.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProposalStore) CountByStatus(ctx context.Context, userID uuid.UUID) (map[models.ProposalStatus]int, error) {
	counts := make(map[models.ProposalStatus]int)
	for _, p := range f.proposals {
		if p.UserID == userID {
			counts[p.Status]++
		}
	}
	return counts, nil
}

func (f *fakeProposalStore) DailyCounts(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.DailyCount, error) {
	return f.daily, nil
}

// fakeGenerator plays back canned text or an error
type fakeGenerator struct {
	text    string
	err     error
	calls   int
	lastReq GenerateTextRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateTextRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeGenerator) Refine(ctx context.Context, existingText, instruction string) string {
	if f.err != nil {
		return existingText
	}
	return f.text
}

// fakeExportStore keeps exports in memory
type fakeExportStore struct {
	exports []*models.ProposalExport
}

func (f *fakeExportStore) Create(ctx context.Context, export *models.ProposalExport) error {
	export.CreatedAt = time.Now().UTC()
	f.exports = append(f.exports, export)
	return nil
}

func (f *fakeExportStore) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.ProposalExport, error) {
	for _, e := range f.exports {
		if e.ID == id && e.UserID == userID {
			return e, nil
		}
	}
	return nil, errors.New("no rows")
}

// fakeStorage keeps uploaded blobs in memory
type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, exportID uuid.UUID, filename string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	path := "exports/" + exportID.String() + "/" + filename
	f.objects[path] = data
	return path, nil
}

func (f *fakeStorage) Download(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	data, ok := f.objects[storagePath]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (f *fakeStorage) Delete(ctx context.Context, storagePath string) error {
	delete(f.objects, storagePath)
	return nil
}

func newTestUser(plan models.Plan) *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "freelancer@example.com",
		Plan:  plan,
	}
}

func newTestProposalService(users *fakeUserStore, proposals *fakeProposalStore, generator *fakeGenerator) *ProposalService {
	return NewProposalService(
		ProposalWithUserStore(users),
		ProposalWithProposalStore(proposals),
		ProposalWithGenerator(generator),
	)
}

func TestGenerateHappyPath(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	proposals := &fakeProposalStore{}
	generator := &fakeGenerator{text: "Are you open to a call?\nI build similar systems."}
	service := newTestProposalService(users, proposals, generator)

	result, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "URGENT: need a backend developer, budget $2000",
		Platform:       "upwork",
		Framework:      "proof_driven",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Proposal.ProposalText != generator.text {
		t.Errorf("proposal text mismatch: %q", result.Proposal.ProposalText)
	}
	if result.Proposal.Status != models.StatusGenerated {
		t.Errorf("expected status generated, got %q", result.Proposal.Status)
	}
	if result.Proposal.Framework != "proof_driven" {
		t.Errorf("expected framework proof_driven, got %q", result.Proposal.Framework)
	}
	if result.RemainingQuota != 0 {
		t.Errorf("free plan after one generation should have 0 remaining, got %d", result.RemainingQuota)
	}
	if len(result.Signals) == 0 {
		t.Error("expected signals for urgent job with budget")
	}
	if len(proposals.proposals) != 1 {
		t.Fatalf("expected one stored proposal, got %d", len(proposals.proposals))
	}
}

func TestGenerateQuotaExceeded(t *testing.T) {
	user := newTestUser(models.PlanFree)
	user.DailyUsage = 1
	user.LastUsageDate = time.Now().UTC().Format("2006-01-02")

	users := &fakeUserStore{user: user}
	generator := &fakeGenerator{text: "text"}
	service := newTestProposalService(users, &fakeProposalStore{}, generator)

	_, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "a job",
	})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if generator.calls != 0 {
		t.Errorf("generator must not be called when quota is exhausted, got %d calls", generator.calls)
	}
}

func TestGenerateQuotaResetsOnNewDay(t *testing.T) {
	user := newTestUser(models.PlanFree)
	user.DailyUsage = 1
	user.LastUsageDate = "2020-01-01"

	users := &fakeUserStore{user: user}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{text: "text"})

	_, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "a job",
	})
	if err != nil {
		t.Fatalf("stale usage from a previous day must not block generation: %v", err)
	}
}

func TestGenerateProPlanLimit(t *testing.T) {
	user := newTestUser(models.PlanPro)
	user.DailyUsage = 9
	user.LastUsageDate = time.Now().UTC().Format("2006-01-02")

	users := &fakeUserStore{user: user}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{text: "text"})

	result, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "a job",
	})
	if err != nil {
		t.Fatalf("tenth generation must succeed: %v", err)
	}
	if result.RemainingQuota != 0 {
		t.Errorf("expected 0 remaining after tenth generation, got %d", result.RemainingQuota)
	}

	_, err = service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "a job",
	})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded on eleventh generation, got %v", err)
	}
}

func TestGenerateRefundsOnFailure(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	upstream := errors.New("model overloaded")
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{err: upstream})

	_, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "a job",
	})
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if users.refundCalls != 1 {
		t.Errorf("expected exactly one refund, got %d", users.refundCalls)
	}
	if users.user.DailyUsage != 0 {
		t.Errorf("expected usage refunded to 0, got %d", users.user.DailyUsage)
	}
}

func TestGenerateEmptyJobDescription(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{text: "text"})

	_, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "   ",
	})
	if !errors.Is(err, ErrEmptyJobDescription) {
		t.Fatalf("expected ErrEmptyJobDescription, got %v", err)
	}
}

func TestGenerateTruncatesStoredDescription(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	proposals := &fakeProposalStore{}
	service := newTestProposalService(users, proposals, &fakeGenerator{text: "text"})

	long := strings.Repeat("x", 500)
	result, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: long,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Proposal.FullJobDescription != long {
		t.Error("full job description must be stored unmodified")
	}
	if len(result.Proposal.JobDescription) != 203 || !strings.HasSuffix(result.Proposal.JobDescription, "...") {
		t.Errorf("expected 200 chars plus ellipsis, got %d chars", len(result.Proposal.JobDescription))
	}
}

func TestGenerateTruncationPreservesUTF8(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{text: "text"})

	// A two-byte rune straddles the preview boundary
	job := strings.Repeat("a", 199) + strings.Repeat("é", 40)
	result, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: job,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	preview := result.Proposal.JobDescription
	if !utf8.ValidString(preview) {
		t.Errorf("truncated preview is not valid UTF-8: % x", preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("expected ellipsis suffix, got %q", preview)
	}
	if strings.ContainsRune(strings.TrimSuffix(preview, "..."), utf8.RuneError) {
		t.Errorf("preview contains a replacement rune: %q", preview)
	}
}

func TestGenerateRefundsOnPersistFailure(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	proposals := &fakeProposalStore{createErr: errors.New("insert failed")}
	service := newTestProposalService(users, proposals, &fakeGenerator{text: "text"})

	_, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "a job",
	})
	if err == nil {
		t.Fatal("expected error when the proposal insert fails")
	}
	if users.refundCalls != 1 {
		t.Errorf("expected the reservation refunded on persist failure, got %d refunds", users.refundCalls)
	}
}

func TestGeneratePassesCanonicalFrameworkToGenerator(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	generator := &fakeGenerator{text: "text"}
	service := newTestProposalService(users, &fakeProposalStore{}, generator)

	result, err := service.Generate(context.Background(), GenerateProposalRequest{
		UserEmail:      "freelancer@example.com",
		JobDescription: "a job",
		Framework:      "does_not_exist",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generator.lastReq.Framework != "fast_hook" {
		t.Errorf("generator must receive the canonical framework key, got %q", generator.lastReq.Framework)
	}
	if result.Proposal.Framework != "fast_hook" {
		t.Errorf("stored framework must be canonical, got %q", result.Proposal.Framework)
	}
}

func TestRefineRequiresProPlan(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{text: "refined"})

	_, err := service.Refine(context.Background(), RefineProposalRequest{
		UserEmail: "freelancer@example.com",
		Text:      "original",
	})
	if !errors.Is(err, ErrPlanRequired) {
		t.Fatalf("expected ErrPlanRequired for free plan, got %v", err)
	}
}

func TestRefineProPlan(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanPro)}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{text: "refined"})

	result, err := service.Refine(context.Background(), RefineProposalRequest{
		UserEmail:   "freelancer@example.com",
		Text:        "original",
		Instruction: "shorter",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "refined" {
		t.Errorf("expected refined text, got %q", result.Text)
	}
}

func TestUsageTodayIgnoresStaleDate(t *testing.T) {
	user := newTestUser(models.PlanPro)
	user.DailyUsage = 7
	user.LastUsageDate = "2020-01-01"

	users := &fakeUserStore{user: user}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{})

	result, err := service.UsageToday(context.Background(), UsageTodayRequest{UserEmail: "freelancer@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Used != 0 {
		t.Errorf("stale usage should read as 0, got %d", result.Used)
	}
	if result.Remaining != 10 {
		t.Errorf("expected full pro quota remaining, got %d", result.Remaining)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	users := &fakeUserStore{user: newTestUser(models.PlanFree)}
	service := newTestProposalService(users, &fakeProposalStore{}, &fakeGenerator{})

	_, err := service.UpdateStatus(context.Background(), UpdateStatusRequest{
		UserEmail:  "freelancer@example.com",
		ProposalID: uuid.New(),
		Status:     models.ProposalStatus("archived"),
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	_, err = service.UpdateStatus(context.Background(), UpdateStatusRequest{
		UserEmail:  "freelancer@example.com",
		ProposalID: uuid.New(),
		Status:     models.StatusSent,
	})
	if !errors.Is(err, ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound for unknown id, got %v", err)
	}
}

func TestAnalytics(t *testing.T) {
	user := newTestUser(models.PlanFree)
	users := &fakeUserStore{user: user}
	proposals := &fakeProposalStore{}

	for _, status := range []models.ProposalStatus{
		models.StatusGenerated,
		models.StatusSent,
		models.StatusSent,
		models.StatusReplied,
	} {
		proposals.proposals = append(proposals.proposals, &models.Proposal{
			ID:     uuid.New(),
			UserID: user.ID,
			Status: status,
		})
	}
	proposals.daily = []models.DailyCount{
		{Day: "2026-08-27", Count: 1},
		{Day: "2026-08-28", Count: 3},
	}

	service := newTestProposalService(users, proposals, &fakeGenerator{})

	result, err := service.Analytics(context.Background(), AnalyticsRequest{UserEmail: user.Email})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 4 {
		t.Errorf("expected total 4, got %d", result.Total)
	}
	if result.StatusCounts[models.StatusSent] != 2 {
		t.Errorf("expected 2 sent, got %d", result.StatusCounts[models.StatusSent])
	}
	if result.StatusCounts[models.StatusGenerated] != 1 || result.StatusCounts[models.StatusReplied] != 1 {
		t.Errorf("unexpected status counts: %v", result.StatusCounts)
	}
	if len(result.Daily) != 2 || result.Daily[1].Count != 3 {
		t.Errorf("unexpected daily counts: %v", result.Daily)
	}
}

func TestExportAndDownloadHistory(t *testing.T) {
	user := newTestUser(models.PlanFree)
	users := &fakeUserStore{user: user}
	proposals := &fakeProposalStore{}
	exports := &fakeExportStore{}
	store := newFakeStorage()

	proposals.proposals = append(proposals.proposals, &models.Proposal{
		ID:             uuid.New(),
		UserID:         user.ID,
		JobDescription: "Build a thing",
		Platform:       "upwork",
		Framework:      "fast_hook",
		Score:          72,
		Status:         models.StatusSent,
		CreatedAt:      time.Now().UTC(),
	})

	service := NewProposalService(
		ProposalWithUserStore(users),
		ProposalWithProposalStore(proposals),
		ProposalWithExportStore(exports),
		ProposalWithStorage(store),
	)

	exported, err := service.ExportHistory(context.Background(), ExportHistoryRequest{UserEmail: user.Email})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if exported.Export.SizeBytes == 0 {
		t.Error("expected non-empty export")
	}

	download, err := service.DownloadExport(context.Background(), DownloadExportRequest{
		UserEmail: user.Email,
		ExportID:  exported.Export.ID,
	})
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer download.Content.Close()

	records, err := csv.NewReader(download.Content).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}
	if records[0][0] != "created_at" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][1] != "upwork" || records[1][4] != "72" {
		t.Errorf("unexpected row: %v", records[1])
	}
}

func TestDownloadExportOwnershipScoped(t *testing.T) {
	owner := newTestUser(models.PlanFree)
	users := &fakeUserStore{user: owner}
	exports := &fakeExportStore{}
	store := newFakeStorage()

	// Export recorded for a different user
	exports.exports = append(exports.exports, &models.ProposalExport{
		ID:     uuid.New(),
		UserID: uuid.New(),
	})

	service := NewProposalService(
		ProposalWithUserStore(users),
		ProposalWithExportStore(exports),
		ProposalWithStorage(store),
	)

	_, err := service.DownloadExport(context.Background(), DownloadExportRequest{
		UserEmail: owner.Email,
		ExportID:  exports.exports[0].ID,
	})
	if !errors.Is(err, ErrExportNotFound) {
		t.Fatalf("expected ErrExportNotFound for foreign export, got %v", err)
	}
}
