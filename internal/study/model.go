package study

import "time"

// Difficulty levels used by analyses, flashcards and quiz questions.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Concept importance tiers.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// Analysis is the structured pedagogical content of one text.
type Analysis struct {
	Subject     string       `json:"subject"`
	Level       string       `json:"level"`
	KeyConcepts []KeyConcept `json:"keyConcepts"`
	Structure   []Section    `json:"structure"`
	Formulas    []Formula    `json:"formulas"`
}

type KeyConcept struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	Importance string `json:"importance"`
}

type Section struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Concepts []string `json:"concepts"`
}

type Formula struct {
	Name        string `json:"name"`
	Formula     string `json:"formula"`
	Description string `json:"description"`
}

// Summary is the readable digest derived from an Analysis.
type Summary struct {
	Title      string           `json:"title"`
	Overview   string           `json:"overview"`
	Sections   []SummarySection `json:"sections"`
	Conclusion string           `json:"conclusion"`
}

type SummarySection struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"keyPoints"`
}

// Flashcard is one question/answer study unit.
type Flashcard struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Concept    string `json:"concept"`
}

// Options holds the four labeled answers of a quiz question.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// QuizQuestion is one multiple-choice unit.
type QuizQuestion struct {
	Question      string  `json:"question"`
	Options       Options `json:"options"`
	CorrectAnswer string  `json:"correctAnswer"`
	Explanation   string  `json:"explanation"`
	Difficulty    string  `json:"difficulty"`
	Category      string  `json:"category"`
}

// ChunkResult is the generation output for one chunk of text.
type ChunkResult struct {
	Analysis   Analysis
	Summary    Summary
	Flashcards []Flashcard
	Quiz       []QuizQuestion
}

// Metadata describes how an AggregatedResult was produced.
type Metadata struct {
	TotalChunks   int       `json:"totalChunks"`
	Merged        bool      `json:"merged"`
	Model         string    `json:"model"`
	ProcessedAt   time.Time `json:"processedAt"`
	ContentLength int       `json:"contentLength"`
}

// AggregatedResult is the combined output of a pipeline run.
type AggregatedResult struct {
	Analysis   Analysis       `json:"analysis"`
	Summary    Summary        `json:"summary"`
	Flashcards []Flashcard    `json:"flashcards"`
	Quiz       []QuizQuestion `json:"quiz"`
	Metadata   Metadata       `json:"metadata"`
}
