package interview

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSessionJSONRoundTrip(t *testing.T) {
	score := 4
	rem := int64(1200)
	final := 73
	s := Session{
		SessionID:            "abc-123",
		Role:                 "Full Stack Developer",
		Topic:                "react",
		ResumeText:           "ten years of experience",
		Status:               StatusInProgress,
		CurrentQuestionIndex: 1,
		Questions: []QuestionRecord{
			{
				ID:          "q1",
				Index:       0,
				Difficulty:  DifficultyEasy,
				Question:    "What is JSX?",
				Answer:      "A syntax extension.",
				Score:       &score,
				AllottedMs:  20000,
				SubmittedAt: 1700000010000,
				StartedAt:   1700000000000,
			},
			{
				ID:          "q2",
				Index:       1,
				Difficulty:  DifficultyMedium,
				Question:    "Explain the event loop.",
				AllottedMs:  60000,
				RemainingMs: &rem,
				StartedAt:   1700000010000,
			},
		},
		Profile: CandidateProfile{
			Name:            "Jane Doe",
			Email:           "jane@example.com",
			Phone:           "555-123-4567",
			ResumeExtracted: true,
		},
		FinalScore: &final,
		CreatedAt:  1700000000000,
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Session
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(s, back) {
		t.Fatalf("round trip diverged:\n before: %+v\n after:  %+v", s, back)
	}
}

func TestPercentScore(t *testing.T) {
	one, five, three := 1, 5, 3

	tests := []struct {
		name   string
		scores []*int
		want   int
	}{
		{"empty set", nil, 0},
		{"all max", []*int{&five, &five}, 100},
		{"mixed with unscored", []*int{&three, nil}, 30},
		{"rounds to nearest", []*int{&one, nil, nil}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{}
			for i, sc := range tt.scores {
				s.Questions = append(s.Questions, QuestionRecord{Index: i, Score: sc})
			}
			if got := s.PercentScore(); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestActive(t *testing.T) {
	s := Session{Status: StatusCollectingProfile}
	if s.Active() != nil {
		t.Fatal("no active question outside in-progress")
	}

	s = Session{
		Status:               StatusInProgress,
		CurrentQuestionIndex: 0,
		Questions:            []QuestionRecord{{ID: "q1"}},
	}
	if q := s.Active(); q == nil || q.ID != "q1" {
		t.Fatalf("unexpected active: %v", q)
	}

	s.CurrentQuestionIndex = 5
	if s.Active() != nil {
		t.Fatal("out-of-range index must yield no active question")
	}
}

func TestProfileComplete(t *testing.T) {
	p := CandidateProfile{Name: "J", Email: "j@x.com"}
	if p.Complete() {
		t.Fatal("missing phone should be incomplete")
	}
	p.Phone = "1"
	if !p.Complete() {
		t.Fatal("expected complete")
	}
}
