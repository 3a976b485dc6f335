// Package tools implements the tools the pipeline personas call: a report
// reader and two plan generators that forward a fixed prompt to the model.
package tools

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/ai"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/ai/prompt"
)

// ReportReader hands the extracted report to the agent that calls it.
type ReportReader struct{}

func (ReportReader) Name() string { return "Blood Test Report Reader" }

func (ReportReader) Description() string {
	return "Reads all the text content from a specified PDF blood test report."
}

func (ReportReader) Run(_ context.Context, text string) (string, error) {
	return fmt.Sprintf("blood test report for context :\n\n%s\n\n", text), nil
}

// Generator sends Render(input) to the model and returns the raw answer.
type Generator struct {
	name        string
	description string
	render      func(data string) (string, error)
	client      ai.Client
	temperature float32
}

func NewNutritionGenerator(client ai.Client, temperature float32) *Generator {
	return &Generator{
		name:        "Nutrition Analyzer",
		description: "Analyzes blood report data to generate a personalized nutrition plan.",
		render:      prompt.NutritionToolPrompt,
		client:      client,
		temperature: temperature,
	}
}

func NewExerciseGenerator(client ai.Client, temperature float32) *Generator {
	return &Generator{
		name:        "Exercise Planner",
		description: "Creates a personalized exercise plan based on blood report data.",
		render:      prompt.ExerciseToolPrompt,
		client:      client,
		temperature: temperature,
	}
}

func (g *Generator) Name() string { return g.name }

func (g *Generator) Description() string { return g.description }

func (g *Generator) Run(ctx context.Context, data string) (string, error) {
	p, err := g.render(data)
	if err != nil {
		return "", err
	}
	return g.client.Generate(ctx, ai.Request{Prompt: p, Temperature: g.temperature})
}
