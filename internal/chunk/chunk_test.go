package chunk

import (
	"reflect"
	"strings"
	"testing"
)

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second!! Third?  ...   Fourth")
	want := []string{"First one", "Second", "Third", "Fourth"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sentences = %#v, want %#v", got, want)
	}
	if got := Sentences(" ... !? "); len(got) != 0 {
		t.Fatalf("expected no sentences, got %#v", got)
	}
}

func TestSplitPacksGreedily(t *testing.T) {
	text := "aaaa. bbbb. cccc. dddd."
	// "aaaa. bbbb" is 10 characters; adding ". cccc" would make 16.
	got := Split(text, 12)
	want := []string{"aaaa. bbbb", "cccc. dddd"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split = %#v, want %#v", got, want)
	}
}

func TestSplitOversizedSentenceOverflows(t *testing.T) {
	long := strings.Repeat("x", 50)
	got := Split("short. "+long+". tail", 10)
	want := []string{"short", long, "tail"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Split = %#v, want %#v", got, want)
	}
}

func TestSplitEmpty(t *testing.T) {
	if got := Split("   ", 100); len(got) != 0 {
		t.Fatalf("expected no chunks, got %#v", got)
	}
}

func TestSplitReconstructsSentences(t *testing.T) {
	texts := []string{
		"Les forces s'équilibrent. La masse reste constante! Pourquoi? Parce que.",
		strings.Repeat("The mitochondria is the powerhouse of the cell. ", 200),
		"One sentence without a terminator",
		"Mixed... punctuation?! Everywhere. Really",
	}
	sizes := []int{1, 20, 100, 3000}

	for _, text := range texts {
		for _, size := range sizes {
			chunks := Split(text, size)
			var rebuilt []string
			for _, c := range chunks {
				rebuilt = append(rebuilt, strings.Split(c, Separator)...)
			}
			want := Sentences(text)
			if !reflect.DeepEqual(rebuilt, want) {
				t.Fatalf("size %d: rebuilt sentences differ\n got %#v\nwant %#v", size, rebuilt, want)
			}
		}
	}
}

func TestSplitRespectsBudget(t *testing.T) {
	text := strings.Repeat("Photosynthesis converts light into chemical energy. Plants store it as glucose! ", 120)
	longest := 0
	for _, s := range Sentences(text) {
		if n := Len(s); n > longest {
			longest = n
		}
	}
	for _, size := range []int{longest, 200, 3000} {
		for i, c := range Split(text, size) {
			if Len(c) > size {
				t.Fatalf("size %d: chunk %d has %d characters", size, i, Len(c))
			}
		}
	}
}

func TestSplitLargeDocumentChunkCount(t *testing.T) {
	sentence := "This sentence is exactly fifty characters long ok"
	if Len(sentence) != 49 {
		t.Fatalf("fixture length changed: %d", Len(sentence))
	}
	text := strings.Repeat(sentence+". ", 190)
	if n := Len(text); n < 9000 || n > 10000 {
		t.Fatalf("fixture length %d out of range", n)
	}
	chunks := Split(text, DefaultSize)
	if len(chunks) < 3 || len(chunks) > 4 {
		t.Fatalf("expected 3-4 chunks, got %d", len(chunks))
	}
}
