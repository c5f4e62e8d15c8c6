package entities

import "encoding/json"

// RawOutcome wraps a stored outcome payload after a game has been read
// back from persistence. Terminal games are never settled again, so the
// payload only needs to survive for display and audit.
type RawOutcome struct {
	Kind GameKind        `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// GameKind returns the kind the stored outcome belongs to
func (o RawOutcome) GameKind() GameKind {
	return o.Kind
}

// Validate is a no-op; stored outcomes were validated at settlement time
func (o RawOutcome) Validate() error {
	return nil
}

// EncodeOutcome serializes an outcome for the result column.
func EncodeOutcome(outcome Outcome) ([]byte, error) {
	data, err := json.Marshal(outcome)
	if err != nil {
		return nil, err
	}
	return json.Marshal(RawOutcome{Kind: outcome.GameKind(), Data: data})
}

// DecodeOutcome restores a stored result column into a RawOutcome.
func DecodeOutcome(data []byte) (Outcome, error) {
	var raw RawOutcome
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
