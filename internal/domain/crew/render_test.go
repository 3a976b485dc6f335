package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := Render("t", `Query "{{.Query}}" on {{.FilePath}}`, Inputs{Query: "thyroid", FilePath: "/tmp/r.pdf"})
	require.NoError(t, err)
	assert.Equal(t, `Query "thyroid" on /tmp/r.pdf`, out)
}

func TestRenderBadTemplate(t *testing.T) {
	_, err := Render("t", "{{.Query", Inputs{})
	assert.Error(t, err)

	_, err = Render("t", "{{.Missing}}", Inputs{})
	assert.Error(t, err)
}

func TestSystemPrompt(t *testing.T) {
	a := &Agent{
		Name:      "doctor",
		Role:      "Senior Experienced Doctor",
		Goal:      "Answer: {{.Query}}",
		Backstory: "25 years in internal medicine.",
	}
	out, err := a.SystemPrompt(Inputs{Query: "summarize"})
	require.NoError(t, err)
	assert.Contains(t, out, "You are Senior Experienced Doctor.")
	assert.Contains(t, out, "25 years in internal medicine.")
	assert.Contains(t, out, "Your personal goal is: Answer: summarize")
}
