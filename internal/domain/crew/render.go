package crew

import (
	"bytes"
	"fmt"
	"text/template"
)

// Render fills {{.Query}} and {{.FilePath}} placeholders.
func Render(name, text string, in Inputs) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// SystemPrompt renders the persona as the system message.
func (a *Agent) SystemPrompt(in Inputs) (string, error) {
	goal, err := Render(a.Name+".goal", a.Goal, in)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You are %s. %s\nYour personal goal is: %s", a.Role, a.Backstory, goal), nil
}
