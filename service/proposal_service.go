package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"replyboost-backend/models"
	"replyboost-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmptyJobDescription = errors.New("job description is required")
	ErrEmptyProposalText   = errors.New("proposal text is required")
	ErrQuotaExceeded       = errors.New("daily generation limit reached")
	ErrPlanRequired        = errors.New("refinement requires a paid plan")
	ErrProposalNotFound    = errors.New("proposal not found")
	ErrInvalidStatus       = errors.New("invalid proposal status")
	ErrExportNotFound      = errors.New("export not found")
)

// Stored job descriptions are truncated for listings; the full text is
// kept in a separate column.
const descriptionPreviewLength = 200

// analyticsWindowDays is how far back daily generation counts reach
const analyticsWindowDays = 7

// ProposalService orchestrates the quota-gated generation workflow and
// proposal history operations
type ProposalService struct {
	users     UserStore
	proposals ProposalStore
	exports   ExportStore
	generator Generator
	storage   storage.Storage
}

// ProposalServiceOption is a functional option for ProposalService
type ProposalServiceOption func(*ProposalService)

// ProposalWithUserStore sets the user store
func ProposalWithUserStore(store UserStore) ProposalServiceOption {
	return func(s *ProposalService) {
		s.users = store
	}
}

// ProposalWithProposalStore sets the proposal store
func ProposalWithProposalStore(store ProposalStore) ProposalServiceOption {
	return func(s *ProposalService) {
		s.proposals = store
	}
}

// ProposalWithExportStore sets the export store
func ProposalWithExportStore(store ExportStore) ProposalServiceOption {
	return func(s *ProposalService) {
		s.exports = store
	}
}

// ProposalWithGenerator sets the text generator
func ProposalWithGenerator(generator Generator) ProposalServiceOption {
	return func(s *ProposalService) {
		s.generator = generator
	}
}

// ProposalWithStorage sets the export storage backend
func ProposalWithStorage(store storage.Storage) ProposalServiceOption {
	return func(s *ProposalService) {
		s.storage = store
	}
}

// NewProposalService creates a new proposal service
func NewProposalService(opts ...ProposalServiceOption) *ProposalService {
	s := &ProposalService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateProposalRequest represents a request to generate a proposal
type GenerateProposalRequest struct {
	UserEmail      string
	JobDescription string
	Platform       string
	Framework      string
	CTAStyle       string
	ToneLevel      int
}

// GenerateProposalResult represents the combined generation payload
type GenerateProposalResult struct {
	Proposal       *models.Proposal
	Signals        models.SignalList
	Score          models.ReplyScore
	RemainingQuota int
}

// Generate runs the quota-gated generation workflow: reserve quota,
// analyze signals, generate text, score it, persist the proposal.
// The quota reservation is a single atomic conditional update; a typed
// generation failure refunds it so failed calls are not billable.
func (s *ProposalService) Generate(ctx context.Context, req GenerateProposalRequest) (*GenerateProposalResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}

	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, ErrEmptyJobDescription
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	day := today()
	limit := user.Plan.DailyGenerationLimit()

	used, ok, err := s.users.ReserveDailyUsage(ctx, user.ID, day, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve quota: %w", err)
	}
	if !ok {
		return nil, ErrQuotaExceeded
	}

	signals := AnalyzeSignals(req.JobDescription)

	// Resolved once here; the generator receives the canonical key so an
	// unknown name logs its fallback a single time.
	frameworkKey, _ := ResolveFramework(req.Framework)
	text, err := s.generator.Generate(ctx, GenerateTextRequest{
		JobDescription: req.JobDescription,
		Profile:        user.Profile,
		Framework:      frameworkKey,
		CTAStyle:       req.CTAStyle,
		ToneLevel:      req.ToneLevel,
	})
	if err != nil {
		if refundErr := s.users.RefundDailyUsage(ctx, user.ID, day); refundErr != nil {
			log.Printf("Failed to refund reserved generation for user %s: %v", user.ID, refundErr)
		}
		return nil, err
	}

	score := ScoreReply(text, req.JobDescription)

	proposal := &models.Proposal{
		UserID:             user.ID,
		JobDescription:     truncateDescription(req.JobDescription),
		FullJobDescription: req.JobDescription,
		ProposalText:       text,
		Platform:           req.Platform,
		Framework:          frameworkKey,
		Score:              score.Score,
		ScoreBreakdown:     score.Breakdown,
		Signals:            signals,
		Status:             models.StatusGenerated,
	}

	if err := s.proposals.Create(ctx, proposal); err != nil {
		if refundErr := s.users.RefundDailyUsage(ctx, user.ID, day); refundErr != nil {
			log.Printf("Failed to refund reserved generation for user %s: %v", user.ID, refundErr)
		}
		return nil, fmt.Errorf("failed to save proposal: %w", err)
	}

	return &GenerateProposalResult{
		Proposal:       proposal,
		Signals:        signals,
		Score:          score,
		RemainingQuota: limit - used,
	}, nil
}

// RefineProposalRequest represents a request to rewrite proposal text
type RefineProposalRequest struct {
	UserEmail   string
	Text        string
	Instruction string
}

// RefineProposalResult represents the rewritten text
type RefineProposalResult struct {
	Text string
}

// Refine rewrites existing proposal text per a free-text instruction.
// Only paid plans may refine. Upstream failures fall back to the
// original text silently, by contract of the generator.
func (s *ProposalService) Refine(ctx context.Context, req RefineProposalRequest) (*RefineProposalResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}

	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyProposalText
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if user.Plan == models.PlanFree {
		return nil, ErrPlanRequired
	}

	return &RefineProposalResult{
		Text: s.generator.Refine(ctx, req.Text, req.Instruction),
	}, nil
}

// UsageTodayRequest represents a request for today's quota state
type UsageTodayRequest struct {
	UserEmail string
}

// UsageTodayResult represents today's quota state
type UsageTodayResult struct {
	Used      int
	Limit     int
	Remaining int
	Plan      models.Plan
}

// UsageToday reports the user's generation usage for the current day.
// Usage recorded under an earlier date counts as zero.
func (s *ProposalService) UsageToday(ctx context.Context, req UsageTodayRequest) (*UsageTodayResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	used := 0
	if user.LastUsageDate == today() {
		used = user.DailyUsage
	}

	limit := user.Plan.DailyGenerationLimit()
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return &UsageTodayResult{
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
		Plan:      user.Plan,
	}, nil
}

// ListProposalsRequest represents a request to list proposal history
type ListProposalsRequest struct {
	UserEmail string
}

// ListProposalsResult represents the proposal history, newest first
type ListProposalsResult struct {
	Proposals []*models.Proposal
}

// ListProposals lists the user's proposals, newest first
func (s *ProposalService) ListProposals(ctx context.Context, req ListProposalsRequest) (*ListProposalsResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	proposals, err := s.proposals.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &ListProposalsResult{Proposals: proposals}, nil
}

// UpdateStatusRequest represents a request to change a proposal's status
type UpdateStatusRequest struct {
	UserEmail  string
	ProposalID uuid.UUID
	Status     models.ProposalStatus
}

// UpdateStatusResult represents the result of a status change
type UpdateStatusResult struct {
	Status models.ProposalStatus
}

// UpdateStatus sets a proposal's engagement status. Statuses are validated
// against the known set but transitions between them are unrestricted.
func (s *ProposalService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*UpdateStatusResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}

	if !models.ValidProposalStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	updated, err := s.proposals.UpdateStatus(ctx, req.ProposalID, user.ID, req.Status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrProposalNotFound
	}

	return &UpdateStatusResult{Status: req.Status}, nil
}

// AnalyticsRequest represents a request for proposal analytics
type AnalyticsRequest struct {
	UserEmail string
}

// AnalyticsResult represents status counts and recent daily activity
type AnalyticsResult struct {
	Total        int
	StatusCounts map[models.ProposalStatus]int
	Daily        []models.DailyCount
}

// Analytics aggregates status counts plus daily generation counts over
// the trailing week
func (s *ProposalService) Analytics(ctx context.Context, req AnalyticsRequest) (*AnalyticsResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	counts, err := s.proposals.CountByStatus(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -analyticsWindowDays).Truncate(24 * time.Hour)
	daily, err := s.proposals.DailyCounts(ctx, user.ID, since)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range counts {
		total += count
	}

	return &AnalyticsResult{
		Total:        total,
		StatusCounts: counts,
		Daily:        daily,
	}, nil
}

// ExportHistoryRequest represents a request to export proposal history
type ExportHistoryRequest struct {
	UserEmail string
}

// ExportHistoryResult represents the stored export
type ExportHistoryResult struct {
	Export *models.ProposalExport
}

// ExportHistory writes the user's proposal history as CSV to the export
// storage backend and records it
func (s *ProposalService) ExportHistory(ctx context.Context, req ExportHistoryRequest) (*ExportHistoryResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.proposals == nil {
		return nil, errors.New("proposal store not set")
	}
	if s.exports == nil {
		return nil, errors.New("export store not set")
	}
	if s.storage == nil {
		return nil, errors.New("storage not set")
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	proposals, err := s.proposals.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	buf, err := renderHistoryCSV(proposals)
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	export := &models.ProposalExport{
		ID:        uuid.New(),
		UserID:    user.ID,
		Filename:  fmt.Sprintf("proposals_%s.csv", time.Now().UTC().Format("20060102")),
		SizeBytes: int64(buf.Len()),
	}

	storagePath, err := s.storage.Upload(ctx, export.ID, export.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}
	export.StoragePath = storagePath

	if err := s.exports.Create(ctx, export); err != nil {
		if deleteErr := s.storage.Delete(ctx, storagePath); deleteErr != nil {
			log.Printf("Failed to clean up orphaned export %s: %v", storagePath, deleteErr)
		}
		return nil, fmt.Errorf("failed to record export: %w", err)
	}

	return &ExportHistoryResult{Export: export}, nil
}

// DownloadExportRequest represents a request to download a stored export
type DownloadExportRequest struct {
	UserEmail string
	ExportID  uuid.UUID
}

// DownloadExportResult carries the export metadata and content.
// The caller owns closing the reader.
type DownloadExportResult struct {
	Export  *models.ProposalExport
	Content io.ReadCloser
}

// DownloadExport streams a previously stored export, scoped to its owner
func (s *ProposalService) DownloadExport(ctx context.Context, req DownloadExportRequest) (*DownloadExportResult, error) {
	if s.users == nil {
		return nil, errors.New("user store not set")
	}
	if s.exports == nil {
		return nil, errors.New("export store not set")
	}
	if s.storage == nil {
		return nil, errors.New("storage not set")
	}

	user, err := s.users.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, ErrUserNotFound
	}

	export, err := s.exports.GetByIDForUser(ctx, req.ExportID, user.ID)
	if err != nil {
		return nil, ErrExportNotFound
	}

	content, err := s.storage.Download(ctx, export.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	return &DownloadExportResult{Export: export, Content: content}, nil
}

// truncateDescription shortens a job description for listing storage.
// The cut never splits a multi-byte rune; the stored preview stays
// valid UTF-8.
func truncateDescription(description string) string {
	if len(description) <= descriptionPreviewLength {
		return description
	}

	cut := descriptionPreviewLength
	for cut > 0 && !utf8.RuneStart(description[cut]) {
		cut--
	}
	return description[:cut] + "..."
}

// renderHistoryCSV renders proposals as CSV, newest first
func renderHistoryCSV(proposals []*models.Proposal) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if err := writer.Write([]string{"created_at", "platform", "framework", "status", "score", "job_description"}); err != nil {
		return nil, err
	}

	for _, p := range proposals {
		record := []string{
			p.CreatedAt.UTC().Format(time.RFC3339),
			p.Platform,
			p.Framework,
			string(p.Status),
			strconv.Itoa(p.Score),
			p.JobDescription,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	return buf, writer.Error()
}
