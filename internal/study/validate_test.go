package study

import "testing"

func validQuestion() QuizQuestion {
	return QuizQuestion{
		Question:      "What is 2+2?",
		Options:       Options{A: "3", B: "4", C: "5", D: "22"},
		CorrectAnswer: "B",
	}
}

func TestQuizQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *QuizQuestion)
		wantErr bool
	}{
		{name: "valid", mutate: func(q *QuizQuestion) {}},
		{name: "lowercase label", mutate: func(q *QuizQuestion) { q.CorrectAnswer = "b" }, wantErr: true},
		{name: "label out of range", mutate: func(q *QuizQuestion) { q.CorrectAnswer = "E" }, wantErr: true},
		{name: "missing option", mutate: func(q *QuizQuestion) { q.Options.D = " " }, wantErr: true},
		{name: "empty question", mutate: func(q *QuizQuestion) { q.Question = "" }, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFlashcardValidate(t *testing.T) {
	if err := (Flashcard{Question: "Q", Answer: "A"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Flashcard{Question: "Q", Answer: "  "}).Validate(); err == nil {
		t.Fatalf("expected error for empty answer")
	}
}

func TestAnalysisValidate(t *testing.T) {
	a := Analysis{Subject: "Physics", Level: LevelBeginner, KeyConcepts: []KeyConcept{{Name: "Force"}}}
	if err := a.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.KeyConcepts = nil
	if err := a.Validate(); err == nil {
		t.Fatalf("expected error without concepts")
	}
}

func TestAnalysisValidateLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{LevelIntermediate, false},
		{"Advanced", false},
		{"expert", true},
		{"", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.level, func(t *testing.T) {
			a := Analysis{Subject: "Physics", Level: tt.level, KeyConcepts: []KeyConcept{{Name: "Force"}}}
			err := a.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("level %q: err=%v wantErr=%v", tt.level, err, tt.wantErr)
			}
		})
	}
}
