package prompt

import "github.com/bryanwahyu/bloodtest-analyzer/internal/domain/crew"

// Agent names, also used as step names in the pipeline result.
const (
	Verifier           = "verifier"
	Doctor             = "doctor"
	Nutritionist       = "nutrition"
	ExerciseSpecialist = "exercise"
)

// Tools given to the personas.
type Tools struct {
	ReportReader crew.Tool
	Nutrition    crew.Tool
	Exercise     crew.Tool
}

// NewVerifier checks that the upload is a lab report.
func NewVerifier(t Tools) *crew.Agent {
	return &crew.Agent{
		Name: Verifier,
		Role: "Blood Report Verifier",
		Goal: "Verify that the uploaded document is a blood test report. If it is not, stop the process immediately.",
		Backstory: "You are a diligent medical records technician responsible for ensuring that only valid medical reports " +
			"are processed. You have a keen eye for document formats and can quickly determine if a file is a lab report.",
		Tools:     tools(t.ReportReader),
		ToolInput: crew.InputReport,
	}
}

// NewDoctor explains abnormal findings against the user's query.
func NewDoctor(t Tools) *crew.Agent {
	return &crew.Agent{
		Name: Doctor,
		Role: "Senior Experienced Doctor",
		Goal: "Provide an in-depth analysis of the blood test report, identify abnormalities, and explain them clearly " +
			"to the user based on their query: {{.Query}}",
		Backstory: "You are a highly respected senior doctor with over 25 years of experience in internal medicine. " +
			"You are known for your meticulous attention to detail and your ability to explain complex medical concepts " +
			"in a clear, understandable, and reassuring manner. You always base your analysis strictly on the provided report.",
		Tools:     tools(t.ReportReader),
		ToolInput: crew.InputReport,
	}
}

func NewNutritionist(t Tools) *crew.Agent {
	return &crew.Agent{
		Name: Nutritionist,
		Role: "Certified Clinical Nutritionist",
		Goal: "Create a detailed and personalized diet plan based on the user's blood test results. " +
			"Focus on actionable advice and explain the reasoning behind your recommendations.",
		Backstory: "You are a certified clinical nutritionist with 15+ years of experience in creating evidence-based dietary plans. " +
			"You believe in a holistic approach to health, using nutrition to address the root causes of health issues identified in the blood work. " +
			"You provide practical, science-backed advice.",
		Tools:     tools(t.Nutrition),
		ToolInput: crew.InputContext,
	}
}

func NewExerciseSpecialist(t Tools) *crew.Agent {
	return &crew.Agent{
		Name: ExerciseSpecialist,
		Role: "Certified Exercise Physiologist",
		Goal: "Develop a safe and effective exercise plan tailored to the user's health profile from the blood report. " +
			"The plan should be balanced and sustainable.",
		Backstory: "You are a certified exercise physiologist who specializes in creating personalized fitness programs based on clinical data. " +
			"You understand that safety and consistency are key to long-term health. You avoid extreme or one-size-fits-all plans, " +
			"focusing instead on what is safe and effective for the individual.",
		Tools:     tools(t.Exercise),
		ToolInput: crew.InputContext,
	}
}

func tools(ts ...crew.Tool) []crew.Tool {
	out := make([]crew.Tool, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
