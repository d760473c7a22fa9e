package service

import (
	"context"
	"math"
	"sort"
	"time"

	"hiraya/internal/domain"
	"hiraya/internal/dto"
	"hiraya/internal/logger"
	"hiraya/internal/repository"

	"go.uber.org/zap"
)

// ProgressService covers per-user study state: the dashboard aggregation and
// every preference, favorite, answer, visit and bulk-wipe operation.
type ProgressService interface {
	GetExamProgress(ctx context.Context, userID string) (*dto.ExamProgressResponse, error)

	GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error)
	SetLastVisitedExam(ctx context.Context, userID, examID string) error

	ToggleFavorite(ctx context.Context, userID string, req *dto.FavoriteRequest) (*dto.FavoriteToggleResponse, error)
	ListFavorites(ctx context.Context, userID, examID string) (*dto.FavoritesResponse, error)

	SaveAnswer(ctx context.Context, userID string, req *dto.SaveAnswerRequest) error
	GetAnswers(ctx context.Context, userID, examID string) (*dto.AnswersResponse, error)
	GetIncorrectQuestions(ctx context.Context, userID, examID string) (*dto.IncorrectQuestionsResponse, error)

	TrackVisit(ctx context.Context, userID, examID string) error
	GetSidebarState(ctx context.Context, userID string) (*dto.SidebarStateResponse, error)
	SetSidebarState(ctx context.Context, userID string, collapsed bool) error

	DeleteExams(ctx context.Context, userID string, examIDs []string) error
	DeleteProviderExams(ctx context.Context, userID string, providerNames []string) (bool, error)
	DeleteAllProgress(ctx context.Context, userID string) error
}

type progressServiceImpl struct {
	progressRepo repository.ProgressRepository
	attemptRepo  repository.AttemptRepository
	contentRepo  repository.ContentRepository
	resolver     ExamResolver
	now          func() time.Time
}

// NewProgressService creates a new instance of ProgressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	attemptRepo repository.AttemptRepository,
	contentRepo repository.ContentRepository,
	resolver ExamResolver,
) ProgressService {
	return &progressServiceImpl{
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		contentRepo:  contentRepo,
		resolver:     resolver,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func unixMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// GetExamProgress builds the per-provider dashboard for every exam the user
// has touched. A failure while aggregating one exam is logged and that exam
// skipped; the rest of the dashboard is still returned.
func (s *progressServiceImpl) GetExamProgress(ctx context.Context, userID string) (*dto.ExamProgressResponse, error) {
	appLogger := logger.Get()

	touched, err := s.progressRepo.ListTouchedExams(ctx, userID)
	if err != nil {
		return nil, err
	}

	byProvider := make(map[string]*dto.ProviderProgress)
	var providerOrder []string
	for _, exam := range touched {
		row, err := s.aggregateExam(ctx, userID, exam)
		if err != nil {
			appLogger.Error("Failed to aggregate exam progress",
				zap.Error(err), zap.String("examID", exam.ExamID), zap.String("userID", userID))
			continue
		}

		group, ok := byProvider[exam.ProviderName]
		if !ok {
			group = &dto.ProviderProgress{
				Name:      exam.ProviderName,
				Exams:     []dto.ExamProgress{},
				IsPopular: exam.IsPopular,
			}
			byProvider[exam.ProviderName] = group
			providerOrder = append(providerOrder, exam.ProviderName)
		}
		group.Exams = append(group.Exams, row)
	}

	providers := make([]dto.ProviderProgress, 0, len(providerOrder))
	for _, name := range providerOrder {
		group := byProvider[name]
		sort.SliceStable(group.Exams, func(i, j int) bool {
			var ti, tj int64
			if group.Exams[i].Timestamp != nil {
				ti = *group.Exams[i].Timestamp
			}
			if group.Exams[j].Timestamp != nil {
				tj = *group.Exams[j].Timestamp
			}
			return ti > tj
		})
		providers = append(providers, *group)
	}

	return &dto.ExamProgressResponse{Providers: providers}, nil
}

// aggregateExam computes the dashboard row for one exam.
func (s *progressServiceImpl) aggregateExam(ctx context.Context, userID string, exam repository.TouchedExam) (dto.ExamProgress, error) {
	now := s.now()

	answered, err := s.progressRepo.CountAnswersByExam(ctx, userID, exam.ExamID)
	if err != nil {
		return dto.ExamProgress{}, err
	}

	progress := 0.0
	if exam.TotalQuestions > 0 {
		progress = round1(float64(answered) / float64(exam.TotalQuestions) * 100)
	}

	attempts, err := s.attemptRepo.ListAttemptsByExam(ctx, userID, exam.ExamID)
	if err != nil {
		return dto.ExamProgress{}, err
	}

	row := dto.ExamProgress{
		ID:          exam.ExamID,
		Exam:        exam.Title,
		ExamType:    "Actual",
		Attempts:    len(attempts),
		Progress:    progress,
		LatestGrade: dto.Grade{Score: 0, Total: exam.TotalQuestions},
		Status:      "Not Attempted",
	}

	if len(attempts) > 0 {
		latest := attempts[0]
		row.LatestGrade = dto.Grade{
			Score: int(math.Round(latest.Score / 100 * float64(latest.TotalQuestions))),
			Total: latest.TotalQuestions,
		}
		if latest.Score >= passThreshold {
			row.Status = "Passed"
		} else {
			row.Status = "Failed"
		}
		sum := 0.0
		for _, attempt := range attempts {
			sum += attempt.Score
		}
		row.AverageScore = round2(sum / float64(len(attempts)))

		row.Updated = RelativeLabel(now, latest.AttemptDate)
		ts := unixMillis(latest.AttemptDate)
		row.Timestamp = &ts
		return row, nil
	}

	if answered > 0 {
		row.Updated = "In Progress"
		ts := unixMillis(now)
		row.Timestamp = &ts
		return row, nil
	}

	visit, err := s.progressRepo.GetVisit(ctx, userID, exam.ExamID)
	if err != nil {
		return dto.ExamProgress{}, err
	}
	if visit != nil {
		row.Updated = RelativeLabel(now, visit.LastVisitDate)
		ts := unixMillis(visit.LastVisitDate)
		row.Timestamp = &ts
		return row, nil
	}

	row.Updated = "Not Started"
	return row, nil
}

func (s *progressServiceImpl) GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error) {
	pref, err := s.progressRepo.GetPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.PreferenceResponse{}
	if pref != nil && pref.LastVisitedExam != "" {
		exam := pref.LastVisitedExam
		resp.LastVisitedExam = &exam
	}
	return resp, nil
}

func (s *progressServiceImpl) SetLastVisitedExam(ctx context.Context, userID, examID string) error {
	return s.progressRepo.SetLastVisitedExam(ctx, userID, examID)
}

// ToggleFavorite resolves the exam, then flips the favorite row for the
// question coordinate.
func (s *progressServiceImpl) ToggleFavorite(ctx context.Context, userID string, req *dto.FavoriteRequest) (*dto.FavoriteToggleResponse, error) {
	exam, err := s.resolver.ResolveExam(ctx, req.ExamID)
	if err != nil {
		return nil, err
	}

	added, err := s.progressRepo.ToggleFavorite(ctx, &domain.FavoriteQuestion{
		UserID:        userID,
		ExamID:        exam.ID,
		TopicNumber:   req.TopicNumber,
		QuestionIndex: req.QuestionIndex,
	})
	if err != nil {
		return nil, err
	}

	message := "Question unfavorited successfully"
	if added {
		message = "Question favorited successfully"
	}
	return &dto.FavoriteToggleResponse{Message: message, IsFavorite: added}, nil
}

func (s *progressServiceImpl) ListFavorites(ctx context.Context, userID, examID string) (*dto.FavoritesResponse, error) {
	favorites, err := s.progressRepo.ListFavoritesByExam(ctx, userID, examID)
	if err != nil {
		return nil, err
	}
	coords := make([]dto.FavoriteCoordinate, 0, len(favorites))
	for _, fav := range favorites {
		coords = append(coords, dto.FavoriteCoordinate{
			TopicNumber:   fav.TopicNumber,
			QuestionIndex: fav.QuestionIndex,
		})
	}
	return &dto.FavoritesResponse{Favorites: coords}, nil
}

func (s *progressServiceImpl) SaveAnswer(ctx context.Context, userID string, req *dto.SaveAnswerRequest) error {
	return s.progressRepo.UpsertAnswer(ctx, &domain.UserAnswer{
		UserID:          userID,
		ExamID:          req.ExamID,
		TopicNumber:     req.TopicNumber,
		QuestionIndex:   req.QuestionIndex,
		SelectedOptions: req.SelectedOptions,
	})
}

func (s *progressServiceImpl) GetAnswers(ctx context.Context, userID, examID string) (*dto.AnswersResponse, error) {
	answers, err := s.progressRepo.ListAnswersByExam(ctx, userID, examID)
	if err != nil {
		return nil, err
	}
	saved := make([]dto.SavedAnswer, 0, len(answers))
	for _, answer := range answers {
		saved = append(saved, dto.SavedAnswer{
			TopicNumber:     answer.TopicNumber,
			QuestionIndex:   answer.QuestionIndex,
			SelectedOptions: answer.SelectedOptions,
		})
	}
	return &dto.AnswersResponse{Answers: saved}, nil
}

// GetIncorrectQuestions returns the incorrect ids from the latest attempt, or
// an empty list when the user never attempted the exam.
func (s *progressServiceImpl) GetIncorrectQuestions(ctx context.Context, userID, examID string) (*dto.IncorrectQuestionsResponse, error) {
	latest, err := s.attemptRepo.GetLatestAttempt(ctx, userID, examID)
	if err != nil {
		return nil, err
	}
	resp := &dto.IncorrectQuestionsResponse{IncorrectQuestions: []string{}}
	if latest != nil && latest.IncorrectQuestions != nil {
		resp.IncorrectQuestions = latest.IncorrectQuestions
	}
	return resp, nil
}

func (s *progressServiceImpl) TrackVisit(ctx context.Context, userID, examID string) error {
	return s.progressRepo.UpsertVisit(ctx, userID, examID, s.now())
}

func (s *progressServiceImpl) GetSidebarState(ctx context.Context, userID string) (*dto.SidebarStateResponse, error) {
	pref, err := s.progressRepo.GetPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &dto.SidebarStateResponse{}
	if pref != nil {
		resp.IsCollapsed = pref.IsSidebarCollapsed
	}
	return resp, nil
}

func (s *progressServiceImpl) SetSidebarState(ctx context.Context, userID string, collapsed bool) error {
	return s.progressRepo.SetSidebarCollapsed(ctx, userID, collapsed)
}

func (s *progressServiceImpl) DeleteExams(ctx context.Context, userID string, examIDs []string) error {
	return s.progressRepo.DeleteProgressByExamIDs(ctx, userID, examIDs)
}

// DeleteProviderExams wipes progress for every exam of the named providers.
// The bool reports whether any exams were found for them.
func (s *progressServiceImpl) DeleteProviderExams(ctx context.Context, userID string, providerNames []string) (bool, error) {
	examIDs, err := s.contentRepo.GetExamIDsByProviderNames(ctx, providerNames)
	if err != nil {
		return false, err
	}
	if len(examIDs) == 0 {
		return false, nil
	}
	if err := s.progressRepo.DeleteProgressByExamIDs(ctx, userID, examIDs); err != nil {
		return false, err
	}
	return true, nil
}

func (s *progressServiceImpl) DeleteAllProgress(ctx context.Context, userID string) error {
	return s.progressRepo.DeleteAllProgress(ctx, userID)
}
