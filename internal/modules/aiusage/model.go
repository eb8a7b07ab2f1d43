// README: Monthly LLM call quota and call log.
package aiusage

import (
	"errors"
	"time"

	"myitinerary/internal/types"
)

// ErrInsufficientTokens is returned when a user has no tokens remaining for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of tokens granted per month.
const DefaultTokens = 100

const (
	OperationGenerate = "generate"
	OperationAdjust   = "adjust"
)

// Call is one logged generate or adjust attempt. Outcome is "ok" or an error kind.
type Call struct {
	ID        types.ID
	UID       string
	Operation string
	Provider  string
	Model     string
	Outcome   string
	Latency   time.Duration
	CreatedAt time.Time
}
