package usecase

import (
	"fmt"
	"strings"

	"github.com/aihorizon/horizon/internal/core/domain"
)

const classificationInstruction = `You are a cybersecurity workforce analyst. You assess evidence about AI's impact on DCWF (DoD Cyber Workforce Framework) tasks.
Return a strict JSON object with keys:
is_relevant (boolean), relevance_score (number 0-1), relevance_reason (string),
classification (one of "Replace", "Augment", "Remain Human", "New Task"),
confidence (number 0-1), rationale (string),
dcwf_tasks (array of {task_id, task_name, relevance_score, impact_description, work_role}),
work_roles (array of strings), key_findings (array of strings), ai_tools_mentioned (array of strings).
No markdown, no extra keys.`

const chatInstruction = `You are an assistant for cybersecurity workforce planning. Answer questions about AI's impact on DCWF tasks and work roles.
Ground answers in the provided evidence context when present. When the evidence is insufficient, say so directly.`

const classificationContentLimit = 8000

func buildTaskSearchPrompt(query string, filter domain.SearchFilter, limit int) string {
	var parts []string
	if query != "" {
		parts = append(parts, query)
	}
	if filter.WorkRole != "" {
		parts = append(parts, "job role: "+filter.WorkRole)
	}
	if filter.TaskID != "" {
		parts = append(parts, "DCWF task: "+filter.TaskID)
	}
	if filter.AITool != "" {
		parts = append(parts, "AI tool: "+filter.AITool)
	}
	if filter.Classification != "" {
		parts = append(parts, "classification: "+filter.Classification)
	}
	if len(parts) == 0 {
		parts = append(parts, "list cybersecurity tasks impacted by AI")
	}

	return fmt.Sprintf(`Search the knowledge base for: %s

Return results as a JSON array with this exact format (no markdown, just raw JSON):
[
    {
        "task_id": "1234",
        "task_name": "Short name",
        "description": "What this task involves",
        "classification": "Replace|Augment|Remain Human|New Task",
        "confidence": 0.85,
        "evidence_count": 0,
        "work_roles": ["Role 1"]
    }
]

Return up to %d most relevant results.`, strings.Join(parts, " "), limit)
}

func buildClassificationPrompt(content, title, workRole string) string {
	snippet := content
	if len(snippet) > classificationContentLimit {
		snippet = snippet[:classificationContentLimit]
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	if workRole != "" {
		fmt.Fprintf(&b, "Submitted for work role: %s\n", workRole)
	}
	b.WriteString("Analyze the following content:\n\n")
	b.WriteString(snippet)
	return b.String()
}
