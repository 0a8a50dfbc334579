package event

import "github.com/viant/simrun/model"

// Notice is the payload of run lifecycle events.
type Notice struct {
	State   string           `json:"state,omitempty"`
	Shards  int              `json:"shards,omitempty"`
	Summary *model.Summary   `json:"summary,omitempty"`
	Result  *model.Aggregate `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}
