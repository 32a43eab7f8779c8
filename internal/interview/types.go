package interview

// Difficulty grades a question slot.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty grades.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Status is the lifecycle state of a session. Transitions form a total
// order with no cycles; only an explicit reset returns to StatusIdle.
type Status string

const (
	StatusIdle                Status = "idle"
	StatusCollectingProfile   Status = "collecting-profile"
	StatusGeneratingQuestions Status = "generating-questions"
	StatusInProgress          Status = "in-progress"
	StatusCompleted           Status = "completed"
)

// CandidateProfile holds the candidate's contact details. Fields are
// filled one by one during profile collection and frozen once the
// interview starts.
type CandidateProfile struct {
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	ResumeExtracted bool   `json:"resumeExtracted,omitempty"`
}

// Complete reports whether every required field is present.
func (p CandidateProfile) Complete() bool {
	return p.Name != "" && p.Email != "" && p.Phone != ""
}

// MaxQuestionScore is the top score a single answer can receive.
const MaxQuestionScore = 5

// NoAnswer is the sentinel recorded when a question resolves without a
// typed answer (timer expiry with an empty draft). It is a valid domain
// value, never an error.
const NoAnswer = "(no answer)"

// QuestionRecord is one slot in the fixed question set. Index and
// Difficulty are fixed at creation; Question, Answer, Score and the
// timer fields mutate afterward. Timestamps are epoch milliseconds to
// match the wire shape of the remote store.
type QuestionRecord struct {
	ID          string     `json:"id"`
	Index       int        `json:"index"`
	Difficulty  Difficulty `json:"difficulty"`
	Question    string     `json:"question"`
	Answer      string     `json:"answer,omitempty"`
	Score       *int       `json:"score,omitempty"`
	AllottedMs  int64      `json:"allottedMs"`
	RemainingMs *int64     `json:"remainingMs,omitempty"`
	StartedAt   int64      `json:"startedAt,omitempty"`
	SubmittedAt int64      `json:"submittedAt,omitempty"`
}

// Resolved reports whether this question has been submitted (explicitly
// or by timer expiry). Once resolved, Answer, Score and RemainingMs
// never change again.
func (q *QuestionRecord) Resolved() bool {
	return q.SubmittedAt != 0
}

// Session is the aggregate for one candidate's interview attempt.
// It is owned by a single Engine; two concurrent sessions never share
// mutable state.
type Session struct {
	SessionID            string           `json:"sessionId"`
	Role                 string           `json:"role"`
	Topic                string           `json:"topic,omitempty"`
	ResumeText           string           `json:"resumeText,omitempty"`
	Status               Status           `json:"status"`
	CurrentQuestionIndex int              `json:"currentQuestionIndex"`
	Questions            []QuestionRecord `json:"questions"`
	Profile              CandidateProfile `json:"profile"`
	FinalScore           *int             `json:"finalScore,omitempty"`
	Summary              string           `json:"summary,omitempty"`
	CreatedAt            int64            `json:"createdAt,omitempty"`
	CompletedAt          int64            `json:"completedAt,omitempty"`
}

// Active returns the question currently eligible for a running timer,
// or nil when no question is active. It is always
// Questions[CurrentQuestionIndex].
func (s *Session) Active() *QuestionRecord {
	if s.Status != StatusInProgress {
		return nil
	}
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentQuestionIndex]
}

// TotalScore sums the recorded per-question scores.
func (s *Session) TotalScore() int {
	total := 0
	for i := range s.Questions {
		if s.Questions[i].Score != nil {
			total += *s.Questions[i].Score
		}
	}
	return total
}

// PercentScore converts the summed score into a 0-100 percentage of the
// maximum attainable for this question set.
func (s *Session) PercentScore() int {
	max := len(s.Questions) * MaxQuestionScore
	if max == 0 {
		return 0
	}
	return int(float64(s.TotalScore())/float64(max)*100 + 0.5)
}
