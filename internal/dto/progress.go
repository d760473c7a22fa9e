package dto

// PreferenceRequest is the body of POST /api/user-preference.
type PreferenceRequest struct {
	LastVisitedExam string `json:"last_visited_exam"`
}

// PreferenceResponse is the body of GET /api/user-preference. The exam id is
// null when the user has never opened an exam.
type PreferenceResponse struct {
	LastVisitedExam *string `json:"last_visited_exam"`
}

// FavoriteRequest is the body of POST /api/favorite.
type FavoriteRequest struct {
	ExamID        string `json:"exam_id"`
	TopicNumber   int    `json:"topic_number"`
	QuestionIndex int    `json:"question_index"`
}

// FavoriteToggleResponse reports the post-toggle favorite state.
type FavoriteToggleResponse struct {
	Message    string `json:"message"`
	IsFavorite bool   `json:"is_favorite"`
}

// FavoriteCoordinate identifies one favorited question within an exam.
type FavoriteCoordinate struct {
	TopicNumber   int `json:"topic_number"`
	QuestionIndex int `json:"question_index"`
}

// FavoritesResponse is the body of GET /api/favorites/:examId.
type FavoritesResponse struct {
	Favorites []FavoriteCoordinate `json:"favorites"`
}

// SaveAnswerRequest is the body of POST /api/save-answer.
type SaveAnswerRequest struct {
	ExamID          string `json:"exam_id"`
	TopicNumber     int    `json:"topic_number"`
	QuestionIndex   int    `json:"question_index"`
	SelectedOptions []int  `json:"selected_options"`
}

// SavedAnswer is one stored selection in the answers listing.
type SavedAnswer struct {
	TopicNumber     int   `json:"topic_number"`
	QuestionIndex   int   `json:"question_index"`
	SelectedOptions []int `json:"selected_options"`
}

// AnswersResponse is the body of GET /api/get-answers/:examId.
type AnswersResponse struct {
	Answers []SavedAnswer `json:"answers"`
}

// SubmitAnswersRequest is the body of POST /api/submit-answers. UserAnswers
// maps composite question ids ("T<n> Q<i>") to selected option indices.
type SubmitAnswersRequest struct {
	ExamID      string           `json:"exam_id"`
	UserAnswers map[string][]int `json:"user_answers"`
}

// SubmitAnswersResponse is the grading result for one submission.
type SubmitAnswersResponse struct {
	TotalQuestions     int      `json:"total_questions"`
	CorrectAnswers     int      `json:"correct_answers"`
	Score              float64  `json:"score"`
	Passed             bool     `json:"passed"`
	IncorrectQuestions []string `json:"incorrect_questions"`
}

// IncorrectQuestionsResponse is the body of GET /api/incorrect-questions/:examId.
type IncorrectQuestionsResponse struct {
	IncorrectQuestions []string `json:"incorrect_questions"`
}

// Grade is a correct/total pair for the most recent attempt.
type Grade struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// ExamProgress is the dashboard row for one exam the user has touched.
// Timestamp is unix milliseconds and null when nothing dates the activity.
type ExamProgress struct {
	ID           string  `json:"id"`
	Exam         string  `json:"exam"`
	ExamType     string  `json:"examType"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"averageScore"`
	Progress     float64 `json:"progress"`
	LatestGrade  Grade   `json:"latestGrade"`
	Status       string  `json:"status"`
	Timestamp    *int64  `json:"timestamp"`
	Updated      string  `json:"updated"`
}

// ProviderProgress groups dashboard rows under their provider.
type ProviderProgress struct {
	Name      string         `json:"name"`
	Exams     []ExamProgress `json:"exams"`
	IsPopular bool           `json:"isPopular"`
}

// ExamProgressResponse is the body of GET /api/exam-progress.
type ExamProgressResponse struct {
	Providers []ProviderProgress `json:"providers"`
}

// TrackVisitRequest is the body of POST /api/track-exam-visit.
type TrackVisitRequest struct {
	ExamID string `json:"exam_id"`
}

// DeleteExamsRequest is the body of POST /api/delete-exams.
type DeleteExamsRequest struct {
	ExamIDs []string `json:"exam_ids"`
}

// DeleteProviderExamsRequest is the body of POST /api/delete-provider-exams.
type DeleteProviderExamsRequest struct {
	ProviderNames []string `json:"provider_names"`
}

// SidebarStateRequest is the body of POST /api/sidebar-state.
type SidebarStateRequest struct {
	IsCollapsed bool `json:"is_collapsed"`
}

// SidebarStateResponse is the body of GET /api/sidebar-state.
type SidebarStateResponse struct {
	IsCollapsed bool `json:"is_collapsed"`
}
