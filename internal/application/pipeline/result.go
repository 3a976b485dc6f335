package pipeline

import (
	"encoding/json"
	"fmt"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is what a run produces. On success every step field is set, either
// to the model's answer or to the step's fallback text.
type Result struct {
	Status    string `json:"status"`
	Query     string `json:"query"`
	Verifier  string `json:"verifier,omitempty"`
	Doctor    string `json:"doctor,omitempty"`
	Nutrition string `json:"nutrition,omitempty"`
	Exercise  string `json:"exercise,omitempty"`
	Error     string `json:"error,omitempty"`
}

func failed(query string, err error) *Result {
	return &Result{
		Status: StatusError,
		Query:  query,
		Error:  fmt.Sprintf("Crew execution failed: %s", err),
	}
}

func (r *Result) set(step, output string) {
	switch step {
	case "verifier":
		r.Verifier = output
	case "doctor":
		r.Doctor = output
	case "nutrition":
		r.Nutrition = output
	case "exercise":
		r.Exercise = output
	}
}

// Serialize returns the JSON text persisted with each record.
func (r *Result) Serialize() string {
	b, err := json.Marshal(r)
	if err != nil {
		// only strings inside, Marshal cannot fail
		return fmt.Sprintf(`{"status":%q,"query":%q}`, r.Status, r.Query)
	}
	return string(b)
}

// Fallback is the text stored for a step that could not produce output.
func Fallback(step string) string {
	return fmt.Sprintf("Failed to generate %s output.", step)
}
