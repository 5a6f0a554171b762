// internal/workers/dialogue/get-response/models.go
package getresponse

import (
	"support-bot/internal/dialogue"
	"support-bot/internal/models"
)

type Input struct {
	SessionId string `json:"sessionId"`
	Message   string `json:"message"`
	// Reset clears the conversation context before the turn runs.
	Reset bool `json:"reset"`
}

type Output struct {
	SessionId  string           `json:"sessionId"`
	Reply      string           `json:"reply"`
	Intent     string           `json:"intent"`
	Confidence float64          `json:"confidence"`
	Tier       models.MatchTier `json:"tier"`
	Entities   models.Entities  `json:"entities"`
	Augmented  bool             `json:"augmented"`
	Context    dialogue.Context `json:"context"`
}
