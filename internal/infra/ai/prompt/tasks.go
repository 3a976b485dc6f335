package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/crew"
)

//go:embed templates/*
var templatesFS embed.FS

// Task names, in pipeline order.
const (
	TaskVerification = "verification"
	TaskHelpPatients = "help_patients"
	TaskNutrition    = "nutrition_analysis"
	TaskExercise     = "exercise_planning"
)

// BloodReportTasks returns the four pipeline steps in order. Descriptions are
// still templates; the runner renders them per run.
func BloodReportTasks(t Tools) ([]*crew.Task, error) {
	specs := []struct {
		name    string
		agent   *crew.Agent
		context []string
	}{
		{TaskVerification, NewVerifier(t), nil},
		{TaskHelpPatients, NewDoctor(t), []string{TaskVerification}},
		{TaskNutrition, NewNutritionist(t), []string{TaskHelpPatients}},
		{TaskExercise, NewExerciseSpecialist(t), []string{TaskHelpPatients}},
	}

	tasks := make([]*crew.Task, 0, len(specs))
	for _, s := range specs {
		desc, err := load(s.name + ".md")
		if err != nil {
			return nil, err
		}
		expected, err := load(s.name + "_expected.md")
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &crew.Task{
			Name:           s.name,
			Description:    desc,
			ExpectedOutput: expected,
			Agent:          s.agent,
			Context:        s.context,
		})
	}
	return tasks, nil
}

// NutritionToolPrompt renders the nutrition generator's fixed prompt.
func NutritionToolPrompt(data string) (string, error) {
	return renderData("nutrition_tool.md", data)
}

// ExerciseToolPrompt renders the exercise generator's fixed prompt.
func ExerciseToolPrompt(data string) (string, error) {
	return renderData("exercise_tool.md", data)
}

func renderData(file, data string) (string, error) {
	text, err := load(file)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(file).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", file, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Data string }{data}); err != nil {
		return "", fmt.Errorf("render %s: %w", file, err)
	}
	return buf.String(), nil
}

func load(file string) (string, error) {
	b, err := templatesFS.ReadFile("templates/" + file)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", file, err)
	}
	return strings.TrimSpace(string(b)), nil
}
