package models

// Provider represents a row of the provider table.
type Provider struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	IsPopular bool   `db:"is_popular"`
}

// Exam represents a row of the exam table.
type Exam struct {
	ID             string `db:"id"`
	Title          string `db:"title"`
	TotalQuestions int    `db:"total_questions"`
	ProviderID     int64  `db:"provider_id"`
}

// Topic represents a row of the topic table. Data carries the raw JSONB
// question array; the repository unmarshals it into domain questions.
type Topic struct {
	ID     int64  `db:"id"`
	Number int    `db:"number"`
	Data   []byte `db:"data"`
	ExamID string `db:"exam_id"`
}

// ProviderStat is the grouped provider/exam aggregate used by the provider
// listing and statistics endpoints.
type ProviderStat struct {
	ProviderID     int64  `db:"provider_id"`
	TotalExams     int    `db:"total_exams"`
	TotalQuestions int    `db:"total_questions"`
}
