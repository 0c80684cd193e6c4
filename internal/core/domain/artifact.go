package domain

import "time"

type ClassificationType string

const (
	ClassificationReplace     ClassificationType = "Replace"
	ClassificationAugment     ClassificationType = "Augment"
	ClassificationRemainHuman ClassificationType = "Remain Human"
	ClassificationNewTask     ClassificationType = "New Task"
)

func (c ClassificationType) Valid() bool {
	switch c {
	case ClassificationReplace, ClassificationAugment, ClassificationRemainHuman, ClassificationNewTask:
		return true
	default:
		return false
	}
}

type SourceType string

const (
	SourceWeb      SourceType = "web"
	SourceYouTube  SourceType = "youtube"
	SourcePDF      SourceType = "pdf"
	SourceDocument SourceType = "document"
	SourceText     SourceType = "text"
)

type ResourceType string

const (
	ResourceVideo         ResourceType = "Video"
	ResourceCourse        ResourceType = "Course"
	ResourceCertification ResourceType = "Certification"
	ResourcePlatform      ResourceType = "Platform"
	ResourceGeneric       ResourceType = "Resource"
	ResourceArticle       ResourceType = "Article"
	ResourceTool          ResourceType = "Tool"
	ResourceBootcamp      ResourceType = "Bootcamp"
)

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "Beginner"
	DifficultyIntermediate DifficultyLevel = "Intermediate"
	DifficultyAdvanced     DifficultyLevel = "Advanced"
	DifficultyExpert       DifficultyLevel = "Expert"
)

// TaskMapping links an artifact to one DCWF task it provides evidence for.
type TaskMapping struct {
	TaskID            string  `json:"task_id"`
	TaskName          string  `json:"task_name"`
	RelevanceScore    float64 `json:"relevance_score"`
	ImpactDescription string  `json:"impact_description"`
	WorkRole          string  `json:"work_role,omitempty"`
}

// Artifact is a stored, classified unit of evidence about AI impact on
// cybersecurity workforce tasks.
type Artifact struct {
	ID             string             `json:"artifact_id"`
	Title          string             `json:"title"`
	Content        string             `json:"content"`
	SourceURL      string             `json:"source_url,omitempty"`
	SourceType     SourceType         `json:"source_type"`
	Classification ClassificationType `json:"classification,omitempty"`
	Confidence     float64            `json:"confidence"`
	Rationale      string             `json:"rationale"`
	DCWFTasks      []TaskMapping      `json:"dcwf_tasks"`
	WorkRoles      []string           `json:"work_roles"`
	KeyFindings    []string           `json:"key_findings"`
	AITools        []string           `json:"ai_tools_mentioned"`
	ResourceType   ResourceType       `json:"resource_type"`
	Difficulty     DifficultyLevel    `json:"difficulty"`
	IsFree         bool               `json:"is_free"`
	CreatedAt      time.Time          `json:"created_at"`
}

// DefaultWorkRole is assigned when neither the classifier nor the task
// mappings yield a work role.
const DefaultWorkRole = "Cyber Defense Analyst"

// EnsureWorkRoles guarantees a classified artifact carries at least one work
// role, deriving from task mappings before falling back to the default.
func (a *Artifact) EnsureWorkRoles() {
	if len(a.WorkRoles) > 0 {
		return
	}
	seen := make(map[string]struct{})
	for _, task := range a.DCWFTasks {
		role := task.WorkRole
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		a.WorkRoles = append(a.WorkRoles, role)
	}
	if len(a.WorkRoles) == 0 {
		a.WorkRoles = []string{DefaultWorkRole}
	}
}

// SearchFilter narrows artifact-level matching before task extraction.
type SearchFilter struct {
	Classification string `json:"classification,omitempty"`
	WorkRole       string `json:"job_role,omitempty"`
	AITool         string `json:"ai_tool,omitempty"`
	TaskID         string `json:"dcwf_task,omitempty"`
}

func (f SearchFilter) Empty() bool {
	return f.Classification == "" && f.WorkRole == "" && f.AITool == "" && f.TaskID == ""
}

// TaskSummary is one row of the filtered task aggregation: a distinct DCWF
// task with the evidence backing it.
type TaskSummary struct {
	TaskID         string   `json:"task_id"`
	TaskName       string   `json:"task_name"`
	Description    string   `json:"description"`
	Classification string   `json:"classification"`
	Confidence     float64  `json:"confidence"`
	EvidenceCount  int      `json:"evidence_count"`
	WorkRoles      []string `json:"work_roles"`
}

// TaskSearchResult is the search response: matched tasks plus where they came
// from. Source is "local" when the corpus answered and "generative" when the
// knowledge-store fallback produced the rows; Message carries a user-facing
// note when the fallback was throttled.
type TaskSearchResult struct {
	Tasks   []TaskSummary `json:"tasks"`
	Source  string        `json:"source,omitempty"`
	Message string        `json:"message,omitempty"`
}

// RegistryStats are the aggregate counts reported by the remote store.
type RegistryStats struct {
	Total           int            `json:"total_resources"`
	Classifications map[string]int `json:"classifications"`
	SourceTypes     map[string]int `json:"resource_types"`
}
