package assist_test

import (
	"strings"
	"testing"

	"hrpipeline/internal/assist"
	"hrpipeline/internal/common"
)

func TestParseInterviewQuestions(t *testing.T) {
	raw := `{"behavioral": ["Tell me about a conflict."], "technical": ["Explain indexing."]}`
	questions, err := assist.ParseInterviewQuestions(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions.Behavioral) != 1 || questions.Behavioral[0] != "Tell me about a conflict." {
		t.Fatalf("behavioral = %v", questions.Behavioral)
	}
	if len(questions.Technical) != 1 {
		t.Fatalf("technical = %v", questions.Technical)
	}
}

func TestParseInterviewQuestionsStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"behavioral\": [\"B1\"], \"technical\": [\"T1\", \"T2\"]}\n```"
	questions, err := assist.ParseInterviewQuestions(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions.Technical) != 2 {
		t.Fatalf("technical = %v", questions.Technical)
	}
}

func TestParseInterviewQuestionsMalformed(t *testing.T) {
	_, err := assist.ParseInterviewQuestions("Sure! Here are some questions:")
	if !common.Is(err, common.CodeUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestInterviewQuestionsPromptIncludesDescription(t *testing.T) {
	prompt := assist.InterviewQuestionsPrompt("SRE", "Keeps the pager quiet")
	if !strings.Contains(prompt, "SRE") || !strings.Contains(prompt, "Keeps the pager quiet") {
		t.Fatalf("prompt missing inputs: %q", prompt)
	}

	bare := assist.InterviewQuestionsPrompt("SRE", "")
	if strings.Contains(bare, "Job description") {
		t.Fatalf("prompt mentions empty description: %q", bare)
	}
}
