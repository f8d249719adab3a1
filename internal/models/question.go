package models

// Question is a single prompt/answer pair shown on one board cell.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
