package dto

import "hiraya/internal/domain"

// ExamSummary is one exam inside the providers listing. The id here is the
// short "<provider>-<title>" form the frontend links with, not the stored
// exam id.
type ExamSummary struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Progress       float64 `json:"progress"`
	TotalQuestions int     `json:"totalQuestions"`
	Order          int     `json:"order"`
}

// ProviderSummary is one provider inside the providers listing.
type ProviderSummary struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Image          string        `json:"image"`
	TotalExams     int           `json:"totalExams"`
	TotalQuestions int           `json:"totalQuestions"`
	Exams          []ExamSummary `json:"exams"`
	IsPopular      bool          `json:"isPopular"`
}

// ProvidersResponse is the body of GET /api/providers.
type ProvidersResponse struct {
	Providers   []ProviderSummary `json:"providers"`
	Total       int               `json:"total"`
	Pages       int               `json:"pages"`
	CurrentPage int               `json:"current_page"`
}

// ExamDetailResponse is the body of GET /api/exams/:examId. Topics maps the
// topic number to its question array.
type ExamDetailResponse struct {
	ID        string                    `json:"id"`
	Provider  string                    `json:"provider"`
	ExamTitle string                    `json:"examTitle"`
	ExamCode  string                    `json:"examCode"`
	Topics    map[int][]domain.Question `json:"topics"`
}

// CategoryProvider is one provider row inside a statistics category,
// annotated with live counts.
type CategoryProvider struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	TotalExams     int    `json:"totalExams"`
	TotalQuestions int    `json:"totalQuestions"`
	IsPopular      bool   `json:"isPopular"`
}

// ProviderCategory groups related certification providers for the landing
// page.
type ProviderCategory struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Providers   []CategoryProvider `json:"providers"`
}

// ProviderStatisticsResponse is the body of GET /api/provider-statistics.
type ProviderStatisticsResponse struct {
	Categories      []ProviderCategory `json:"categories"`
	TotalProviders  int                `json:"totalProviders"`
	TotalCategories int                `json:"totalCategories"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
