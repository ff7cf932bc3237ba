// Package assist provides optional text generation for job descriptions and
// interview question suggestions. The feature degrades: when no generator is
// configured or the provider fails, callers fall back to empty content and
// the pipeline keeps working.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"hrpipeline/internal/common"
)

// Generator produces free-form text from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Gemini is a Generator backed by Google's Gemini models.
type Gemini struct {
	model llms.Model
}

const defaultModel = "gemini-2.0-flash"

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(defaultModel),
	)
	if err != nil {
		return nil, common.NewError(common.CodeUnavailable, "failed to initialize gemini client", err)
	}
	return &Gemini{model: model}, nil
}

func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt)
	if err != nil {
		return "", common.NewError(common.CodeUnavailable, "text generation failed", err)
	}
	return strings.TrimSpace(out), nil
}

// JobDescriptionPrompt asks for a ready-to-publish description for an opening.
func JobDescriptionPrompt(jobTitle, team string) string {
	return fmt.Sprintf(
		"Write a concise, professional job description for the position %q on the %q team. "+
			"Include responsibilities, required qualifications and preferred qualifications. "+
			"Answer with the description text only, no preamble.",
		jobTitle, team)
}

// InterviewQuestionsPrompt asks for screening questions as a JSON object with
// "behavioral" and "technical" string arrays.
func InterviewQuestionsPrompt(jobTitle, jobDescription string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate interview questions for the position %q.", jobTitle)
	if jobDescription != "" {
		fmt.Fprintf(&b, " Job description: %s.", jobDescription)
	}
	b.WriteString(` Respond with only a JSON object of the form {"behavioral": ["..."], "technical": ["..."]}, five questions per category.`)
	return b.String()
}

type InterviewQuestions struct {
	Behavioral []string `json:"behavioral"`
	Technical  []string `json:"technical"`
}

// ParseInterviewQuestions decodes a model response, tolerating markdown code
// fences around the JSON payload.
func ParseInterviewQuestions(raw string) (*InterviewQuestions, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var questions InterviewQuestions
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, common.NewError(common.CodeUnavailable, "model returned malformed question payload", err)
	}
	return &questions, nil
}
