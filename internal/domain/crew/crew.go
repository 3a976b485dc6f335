// Package crew declares the building blocks of a pipeline run: personas,
// tasks and the tools they may call.
package crew

import "context"

// Tool is something an agent runs before answering. Input is the report
// text or the context text, depending on the agent.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) (string, error)
}

// ToolInput selects what a tool receives.
type ToolInput int

const (
	// InputReport passes the report text, extracted once per run.
	InputReport ToolInput = iota
	// InputContext passes the joined output of the task's context tasks.
	InputContext
)

// Agent is a role-specialized persona.
type Agent struct {
	Name      string
	Role      string
	Goal      string
	Backstory string
	Tools     []Tool
	ToolInput ToolInput
}

// Task is one step. Context names earlier tasks whose output is passed in.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          *Agent
	Context        []string
}

// Inputs are interpolated into goals and task descriptions.
type Inputs struct {
	Query    string
	FilePath string
}
