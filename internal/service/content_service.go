package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"hiraya/internal/domain"
	"hiraya/internal/dto"
	"hiraya/internal/examdata"
	"hiraya/internal/logger"
	"hiraya/internal/repository"

	"go.uber.org/zap"
)

// ContentService serves the read-mostly provider/exam/topic catalog.
type ContentService interface {
	ListProviders(ctx context.Context, page, perPage int) (*dto.ProvidersResponse, error)
	GetExamDetail(ctx context.Context, userID, examID string) (*dto.ExamDetailResponse, error)
	ResolveExam(ctx context.Context, examID string) (*domain.Exam, error)
	GetProviderStatistics(ctx context.Context) (*dto.ProviderStatisticsResponse, error)
}

type contentServiceImpl struct {
	contentRepo  repository.ContentRepository
	progressRepo repository.ProgressRepository
}

// NewContentService creates a new instance of ContentService.
func NewContentService(contentRepo repository.ContentRepository, progressRepo repository.ProgressRepository) ContentService {
	return &contentServiceImpl{
		contentRepo:  contentRepo,
		progressRepo: progressRepo,
	}
}

// ListProviders returns every provider with its exams. When page and perPage
// are both positive the provider list is paginated; exam aggregates always
// cover the whole catalog.
func (s *contentServiceImpl) ListProviders(ctx context.Context, page, perPage int) (*dto.ProvidersResponse, error) {
	counts, err := s.contentRepo.GetProviderCounts(ctx)
	if err != nil {
		return nil, err
	}

	var providers []domain.Provider
	total := 0
	pages := 1
	currentPage := 1
	if page > 0 && perPage > 0 {
		providers, total, err = s.contentRepo.ListProvidersPage(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		pages = (total + perPage - 1) / perPage
		if pages < 1 {
			pages = 1
		}
		currentPage = page
	} else {
		providers, err = s.contentRepo.ListProviders(ctx)
		if err != nil {
			return nil, err
		}
		total = len(providers)
	}

	summaries := make([]dto.ProviderSummary, 0, len(providers))
	for _, provider := range providers {
		exams, err := s.contentRepo.ListExamsByProvider(ctx, provider.ID)
		if err != nil {
			return nil, err
		}

		examSummaries := make([]dto.ExamSummary, 0, len(exams))
		for _, exam := range exams {
			examSummaries = append(examSummaries, dto.ExamSummary{
				ID:             provider.Name + "-" + exam.Title,
				Title:          exam.Title,
				Progress:       0,
				TotalQuestions: exam.TotalQuestions,
				Order:          examdata.ExamOrder(exam.Title, provider.Name),
			})
		}
		sort.Slice(examSummaries, func(i, j int) bool {
			if examSummaries[i].Order != examSummaries[j].Order {
				return examSummaries[i].Order < examSummaries[j].Order
			}
			return examSummaries[i].Title < examSummaries[j].Title
		})

		count := counts[provider.ID]
		summaries = append(summaries, dto.ProviderSummary{
			Name:           provider.Name,
			Description:    providerDescription(provider.Name),
			Image:          "/api/placeholder/100/100",
			TotalExams:     count.TotalExams,
			TotalQuestions: count.TotalQuestions,
			Exams:          examSummaries,
			IsPopular:      provider.IsPopular,
		})
	}

	return &dto.ProvidersResponse{
		Providers:   summaries,
		Total:       total,
		Pages:       pages,
		CurrentPage: currentPage,
	}, nil
}

// GetExamDetail resolves the exam id and returns the full topic payload. The
// visit row and last-visited preference are updated best-effort: a failure
// there is logged and the response still served.
func (s *contentServiceImpl) GetExamDetail(ctx context.Context, userID, examID string) (*dto.ExamDetailResponse, error) {
	appLogger := logger.Get()

	providerName, titleWithCode, found := strings.Cut(examID, "-")
	if !found {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid exam id: %s", examID))
	}

	provider, err := s.contentRepo.GetProviderByName(ctx, providerName)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, domain.NewProviderNotFoundError(providerName)
	}

	exam, err := s.contentRepo.FindExamByProviderAndTitle(ctx, provider.ID, titleWithCode)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		exam, err = s.contentRepo.FindExamByIDPrefix(ctx, provider.ID, examID)
		if err != nil {
			return nil, err
		}
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(examID)
	}

	topics, err := s.contentRepo.GetTopicsByExamID(ctx, exam.ID)
	if err != nil {
		return nil, err
	}

	topicMap := make(map[int][]domain.Question, len(topics))
	for _, topic := range topics {
		topicMap[topic.Number] = topic.Questions
	}

	code, title := examdata.SplitDisplayTitle(exam.Title)

	if err := s.progressRepo.UpsertVisit(ctx, userID, exam.ID, time.Now().UTC()); err != nil {
		appLogger.Error("Error tracking exam visit", zap.Error(err), zap.String("examID", exam.ID))
	}
	if err := s.progressRepo.SetLastVisitedExam(ctx, userID, exam.ID); err != nil {
		appLogger.Error("Error updating last visited exam", zap.Error(err), zap.String("examID", exam.ID))
	}

	return &dto.ExamDetailResponse{
		ID:        exam.ID,
		Provider:  provider.Name,
		ExamTitle: title,
		ExamCode:  code,
		Topics:    topicMap,
	}, nil
}

// ResolveExam maps a client-supplied exam id to the stored exam row: exact id
// first, then the loose provider-prefix and title-pattern fallback for ids
// built from display titles.
func (s *contentServiceImpl) ResolveExam(ctx context.Context, examID string) (*domain.Exam, error) {
	exam, err := s.contentRepo.GetExamByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam != nil {
		return exam, nil
	}

	providerName, _, _ := strings.Cut(examID, "-")
	titlePattern := examID
	if _, after, found := strings.Cut(examID, ":"); found {
		titlePattern = strings.TrimSpace(after)
	}

	exam, err = s.contentRepo.FindExamByTitlePattern(ctx, providerName, titlePattern)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(examID)
	}
	return exam, nil
}

// GetProviderStatistics annotates the static category catalog with live
// per-provider exam and question counts.
func (s *contentServiceImpl) GetProviderStatistics(ctx context.Context) (*dto.ProviderStatisticsResponse, error) {
	providers, err := s.contentRepo.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.contentRepo.GetProviderCounts(ctx)
	if err != nil {
		return nil, err
	}

	type liveStats struct {
		totalExams     int
		totalQuestions int
		isPopular      bool
		known          bool
	}
	live := make(map[string]liveStats, len(providers))
	for _, provider := range providers {
		count := counts[provider.ID]
		live[provider.Name] = liveStats{
			totalExams:     count.TotalExams,
			totalQuestions: count.TotalQuestions,
			isPopular:      provider.IsPopular,
			known:          true,
		}
	}

	categories := make([]dto.ProviderCategory, 0, len(providerCategories))
	for _, category := range providerCategories {
		catProviders := make([]dto.CategoryProvider, 0, len(category.Providers))
		for _, provider := range category.Providers {
			stats := live[provider.Name]
			isPopular := provider.IsPopular
			if stats.known {
				isPopular = stats.isPopular
			}
			catProviders = append(catProviders, dto.CategoryProvider{
				Name:           provider.Name,
				Description:    provider.Description,
				TotalExams:     stats.totalExams,
				TotalQuestions: stats.totalQuestions,
				IsPopular:      isPopular,
			})
		}
		categories = append(categories, dto.ProviderCategory{
			Name:        category.Name,
			Description: category.Description,
			Providers:   catProviders,
		})
	}

	return &dto.ProviderStatisticsResponse{
		Categories:      categories,
		TotalProviders:  totalCatalogProviders(),
		TotalCategories: len(categories),
	}, nil
}
