package examdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hiraya/internal/domain"
)

var (
	topicSuffixRe = regexp.MustCompile(`__topic-(\d+)`)
	codeRe        = regexp.MustCompile(`-code-([^_]+)`)
)

// ParseFileName splits an exam file name of the form
// "<title>[-code-<code>][__topic-<n>].json" into its parts. The topic number
// defaults to 1 when the suffix is absent.
func ParseFileName(name string) (title, code string, topicNumber int) {
	name = strings.TrimSuffix(name, ".json")

	topicNumber = 1
	if m := topicSuffixRe.FindStringSubmatch(name); m != nil {
		topicNumber, _ = strconv.Atoi(m[1])
		name = topicSuffixRe.ReplaceAllString(name, "")
	}

	if m := codeRe.FindStringSubmatch(name); m != nil {
		code = m[1]
		title = strings.SplitN(name, "-code-", 2)[0]
	} else {
		title = name
	}
	return title, code, topicNumber
}

// ExamID composes the stored exam identifier. The "-code-" segment is always
// present, even for exams without a code.
func ExamID(providerName, title, code string) string {
	return fmt.Sprintf("%s-%s-code-%s", providerName, title, code)
}

// DisplayTitle formats the stored exam title, prefixing the exam code when
// one exists.
func DisplayTitle(title, code string) string {
	if code != "" {
		return fmt.Sprintf("%s: %s", code, title)
	}
	return title
}

// SplitDisplayTitle is the inverse of DisplayTitle: it recovers the code and
// the bare title from a stored "CODE: Title" string. The code is empty when
// the title carries none.
func SplitDisplayTitle(displayTitle string) (code, title string) {
	if idx := strings.Index(displayTitle, ": "); idx >= 0 {
		return displayTitle[:idx], displayTitle[idx+2:]
	}
	return "", displayTitle
}

// IsPopularProvider flags the providers surfaced prominently on the landing
// page.
func IsPopularProvider(name string) bool {
	switch strings.ToLower(name) {
	case "amazon", "microsoft", "google":
		return true
	}
	return false
}

// ExamOrder assigns a sort rank to an exam title so certification tracks list
// foundational exams before advanced ones. Titles that match no known level
// sort last, alphabetically.
func ExamOrder(title, providerName string) int {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "practitioner") || strings.Contains(lower, "foundational") ||
		strings.Contains(lower, "fundamentals"):
		return 0
	case strings.Contains(lower, "associate"):
		return 1
	case strings.Contains(lower, "professional") || strings.Contains(lower, "expert"):
		return 2
	case strings.Contains(lower, "specialty") || strings.Contains(lower, "specialist"):
		return 3
	}
	return 4
}

// TopicFile is one parsed topic JSON file.
type TopicFile struct {
	Number    int
	FileName  string
	Questions []domain.Question
}

// ExamGroup is all topic files belonging to one exam within a provider
// directory.
type ExamGroup struct {
	Title  string
	Code   string
	Topics []TopicFile
}

// ToExam builds the storable exam row for this group.
func (g *ExamGroup) ToExam(examID string, providerID int64) domain.Exam {
	return domain.Exam{
		ID:             examID,
		Title:          DisplayTitle(g.Title, g.Code),
		TotalQuestions: g.TotalQuestions(),
		ProviderID:     providerID,
	}
}

// TotalQuestions sums the question counts across the group's topics.
func (g *ExamGroup) TotalQuestions() int {
	total := 0
	for _, t := range g.Topics {
		total += len(t.Questions)
	}
	return total
}

// LoadProviderDir reads every .json exam file under dir and groups them into
// exams keyed by title and code. Files that fail to parse are reported
// through onSkip and left out rather than aborting the whole directory.
func LoadProviderDir(dir string, onSkip func(fileName string, err error)) ([]ExamGroup, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider directory %s: %w", dir, err)
	}

	groups := make(map[string]*ExamGroup)
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		title, code, topicNumber := ParseFileName(entry.Name())
		questions, err := readQuestions(filepath.Join(dir, entry.Name()))
		if err != nil {
			if onSkip != nil {
				onSkip(entry.Name(), err)
			}
			continue
		}

		key := title + "-code-" + code
		group, ok := groups[key]
		if !ok {
			group = &ExamGroup{Title: title, Code: code}
			groups[key] = group
			keys = append(keys, key)
		}
		group.Topics = append(group.Topics, TopicFile{
			Number:    topicNumber,
			FileName:  entry.Name(),
			Questions: questions,
		})
	}

	sort.Strings(keys)
	result := make([]ExamGroup, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		sort.Slice(group.Topics, func(i, j int) bool {
			return group.Topics[i].Number < group.Topics[j].Number
		})
		result = append(result, *group)
	}
	return result, nil
}

func readQuestions(path string) ([]domain.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return questions, nil
}
