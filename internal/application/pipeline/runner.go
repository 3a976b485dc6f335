// Package pipeline runs the analysis tasks in order, passing each task the
// outputs of the tasks it depends on.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/ai"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/crew"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/observability"
)

const defaultTemperature = 0.7

var errAllStepsFailed = errors.New("all steps failed")

type Runner struct {
	Tasks  []*crew.Task
	Client ai.Client
	// Extract reads the report once, before any step runs. An unreadable
	// report fails the whole run.
	Extract     func(path string) (string, error)
	Logger      *zap.Logger
	Temperature float32
	MaxTokens   int
}

func NewRunner(tasks []*crew.Task, client ai.Client, extract func(string) (string, error), logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Tasks:       tasks,
		Client:      client,
		Extract:     extract,
		Logger:      logger,
		Temperature: defaultTemperature,
	}
}

// Run never returns an error. Failures end up in the Result.
func (r *Runner) Run(ctx context.Context, query, filePath string) *Result {
	log := r.Logger.With(zap.String("file", filePath))
	res, err := r.run(ctx, log, query, filePath)
	if err != nil {
		log.Error("pipeline failed", zap.Error(err))
		observability.PipelineRunsTotal.WithLabelValues(StatusError).Inc()
		return failed(query, err)
	}
	observability.PipelineRunsTotal.WithLabelValues(StatusSuccess).Inc()
	return res
}

func (r *Runner) run(ctx context.Context, log *zap.Logger, query, filePath string) (*Result, error) {
	var report string
	if r.Extract != nil {
		text, err := r.Extract(filePath)
		if err != nil {
			return nil, fmt.Errorf("read report: %w", err)
		}
		report = text
	}

	in := crew.Inputs{Query: query, FilePath: filePath}
	res := &Result{Status: StatusSuccess, Query: query}
	outputs := make(map[string]string, len(r.Tasks))
	var (
		succeeded int
		lastErr   error
	)

	for _, task := range r.Tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		out, err := r.step(ctx, task, in, outputs, report)
		status := "ok"
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			status = "fallback"
			lastErr = err
			log.Warn("step failed, using fallback",
				zap.String("task", task.Name),
				zap.String("agent", task.Agent.Name),
				zap.Error(err))
			out = Fallback(task.Agent.Name)
		}
		observability.StepDuration.WithLabelValues(task.Name, status).Observe(time.Since(start).Seconds())
		log.Debug("step done", zap.String("task", task.Name), zap.Duration("took", time.Since(start)))

		outputs[task.Name] = out
		res.set(task.Agent.Name, out)
		if err == nil {
			succeeded++
		}
	}

	if len(r.Tasks) > 0 && succeeded == 0 {
		return nil, fmt.Errorf("%w: %v", errAllStepsFailed, lastErr)
	}
	return res, nil
}

func (r *Runner) step(ctx context.Context, task *crew.Task, in crew.Inputs, outputs map[string]string, report string) (string, error) {
	desc, err := crew.Render(task.Name, task.Description, in)
	if err != nil {
		return "", err
	}
	expected, err := crew.Render(task.Name+".expected", task.ExpectedOutput, in)
	if err != nil {
		return "", err
	}
	system, err := task.Agent.SystemPrompt(in)
	if err != nil {
		return "", err
	}

	var prior []string
	for _, name := range task.Context {
		if out, ok := outputs[name]; ok {
			prior = append(prior, out)
		}
	}
	contextText := strings.Join(prior, "\n\n")

	var toolOutputs []string
	for _, tool := range task.Agent.Tools {
		input := toolInput(task.Agent.ToolInput, contextText, report)
		out, err := tool.Run(ctx, input)
		if err != nil {
			return "", fmt.Errorf("tool %q: %w", tool.Name(), err)
		}
		toolOutputs = append(toolOutputs, fmt.Sprintf("Tool %s returned:\n%s", tool.Name(), out))
	}

	return r.Client.Generate(ctx, ai.Request{
		System:      system,
		Prompt:      buildPrompt(desc, expected, toolOutputs, contextText),
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})
}

// toolInput falls back to the report when a context tool has no context.
func toolInput(kind crew.ToolInput, contextText, report string) string {
	if kind == crew.InputContext && contextText != "" {
		return contextText
	}
	return report
}

func buildPrompt(desc, expected string, toolOutputs []string, contextText string) string {
	var b strings.Builder
	b.WriteString(desc)
	b.WriteString("\n\nThis is the expected criteria for your final answer: ")
	b.WriteString(expected)
	for _, out := range toolOutputs {
		b.WriteString("\n\n")
		b.WriteString(out)
	}
	if contextText != "" {
		b.WriteString("\n\nThis is the context you're working with:\n")
		b.WriteString(contextText)
	}
	b.WriteString("\n\nBegin! Give your best final answer.")
	return b.String()
}
