package questions

import (
	"fmt"
	"math/rand"

	"github.com/mcdev12/tileduel/internal/models"
)

// operandMax bounds both operands drawn for an arithmetic question.
const operandMax = 10

var operators = []rune{'+', '-', '*', '/'}

// GenerateArithmetic returns n arithmetic questions with pairwise-distinct
// answers. Operands are drawn uniformly from [1, operandMax] and the
// operator uniformly from +, -, * and /; subtraction and division questions
// are built backwards from the operands so the canonical answer is always a
// positive integer. Candidates whose answer was already produced are
// rejected and redrawn, so the call runs until n distinct answers exist.
// The answer space is large relative to any board (n is at most 25), so
// termination is quick in practice even though the worst case is unbounded.
func GenerateArithmetic(n int) []models.Question {
	seen := make(map[int]bool, n)
	out := make([]models.Question, 0, n)

	for len(out) < n {
		x := 1 + rand.Intn(operandMax)
		y := 1 + rand.Intn(operandMax)
		op := operators[rand.Intn(len(operators))]

		var (
			prompt string
			answer int
		)
		switch op {
		case '+':
			prompt = fmt.Sprintf("%d + %d", x, y)
			answer = x + y
		case '*':
			prompt = fmt.Sprintf("%d * %d", x, y)
			answer = x * y
		case '-':
			prompt = fmt.Sprintf("%d - %d", x+y, y)
			answer = x
		case '/':
			prompt = fmt.Sprintf("%d / %d", x*y, y)
			answer = x
		}

		if seen[answer] {
			continue
		}
		seen[answer] = true
		out = append(out, models.Question{
			Question: prompt,
			Answer:   fmt.Sprintf("%d", answer),
		})
	}
	return out
}
