package domain

// Provider is a certification vendor grouping multiple exams.
type Provider struct {
	ID        int64
	Name      string
	IsPopular bool
}

// Exam is a named certification test composed of one or more topics.
// The ID is composed by the content loader as
// "<provider>-<title>-code-<code>" and doubles as the public identifier.
type Exam struct {
	ID             string
	Title          string
	TotalQuestions int
	ProviderID     int64
}

// Topic is a numbered question bank within an exam.
type Topic struct {
	ID     int64
	Number int
	ExamID string

	Questions []Question
}

// Question is one entry of a topic's question array. Answer holds the key as
// letter choices ("A", "C"), converted to zero-based indices at scoring time.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  []string `json:"answer"`
}
