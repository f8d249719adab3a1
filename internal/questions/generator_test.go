package questions

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

func TestGenerateArithmeticDistinctAnswers(t *testing.T) {
	// Board size 1 is a 3x3 grid: nine questions.
	qs := GenerateArithmetic(9)
	if len(qs) != 9 {
		t.Fatalf("GenerateArithmetic(9) returned %d questions", len(qs))
	}

	seen := make(map[string]bool)
	for _, q := range qs {
		if seen[q.Answer] {
			t.Errorf("duplicate answer %q", q.Answer)
		}
		seen[q.Answer] = true
	}
}

func TestGenerateArithmeticAnswersMatchPrompts(t *testing.T) {
	for _, q := range GenerateArithmetic(25) {
		fields := strings.Fields(q.Question)
		if len(fields) != 3 {
			t.Fatalf("malformed question %q", q.Question)
		}
		a, err1 := strconv.Atoi(fields[0])
		b, err2 := strconv.Atoi(fields[2])
		want, err3 := strconv.Atoi(q.Answer)
		if err1 != nil || err2 != nil || err3 != nil {
			t.Fatalf("non-numeric question %q answer %q", q.Question, q.Answer)
		}

		var got int
		switch fields[1] {
		case "+":
			got = a + b
		case "-":
			got = a - b
		case "*":
			got = a * b
		case "/":
			if b == 0 || a%b != 0 {
				t.Fatalf("non-integer division in %q", q.Question)
			}
			got = a / b
		default:
			t.Fatalf("unknown operator in %q", q.Question)
		}
		if got != want {
			t.Errorf("question %q: computed %d, answer says %d", q.Question, got, want)
		}
	}
}

func TestSampleIDs(t *testing.T) {
	ids := SampleIDs(10, 50)
	if len(ids) != 10 {
		t.Fatalf("SampleIDs(10, 50) returned %d ids", len(ids))
	}
	seen := make(map[int]bool)
	for _, id := range ids {
		if id < 1 || id > 50 {
			t.Errorf("id %d outside [1, 50]", id)
		}
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestSourceArithmeticNeedsNoBank(t *testing.T) {
	src := NewSource(nil)
	qs, err := src.QuestionsFor(context.Background(), "arithmetic", 1)
	if err != nil {
		t.Fatalf("QuestionsFor(arithmetic, 1) failed: %v", err)
	}
	if len(qs) != 9 {
		t.Fatalf("QuestionsFor(arithmetic, 1) returned %d questions, want 9", len(qs))
	}

	if _, err := src.QuestionsFor(context.Background(), "antonyms", 1); err == nil {
		t.Fatal("expected error for bank category with no bank configured")
	}
}
