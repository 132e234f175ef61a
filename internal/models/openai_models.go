package models

type LLMClassScores struct {
	Scores []RawClassScore `json:"scores"`
}
