package broadcast

import (
	"github.com/mcdev12/tileduel/internal/models"
)

// Move reports one cleared tile in a game update. Coordinates are 1-based,
// matching what clients submit.
type Move struct {
	Name string `json:"name"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// Payload is the single frame shape pushed to players. Exactly the fields
// relevant to the update are set; a non-empty Winner marks the payload
// terminal and closes both streams after delivery.
type Payload struct {
	Scores    map[string]int    `json:"scores,omitempty"`
	Move      *Move             `json:"move,omitempty"`
	Questions []models.Question `json:"questions,omitempty"`
	Countdown *int              `json:"countdown,omitempty"`
	Winner    string            `json:"winner,omitempty"`
}

// Terminal reports whether delivering p completes the stream.
func (p Payload) Terminal() bool {
	return p.Winner != ""
}

// ScoresPayload builds the plain scoreboard update.
func ScoresPayload(scores map[string]int) Payload {
	return Payload{Scores: scores}
}

// QuestionsPayload builds the question-set assignment update.
func QuestionsPayload(questions []models.Question) Payload {
	return Payload{Questions: questions}
}

// CountdownPayload builds a single pre-game tick. Zero is a valid tick, so
// the value is carried as a pointer to survive omitempty.
func CountdownPayload(remaining int) Payload {
	return Payload{Countdown: &remaining}
}
