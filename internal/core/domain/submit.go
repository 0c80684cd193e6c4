package domain

// SubmitRequest is a user-facing evidence submission: a URL, pasted content,
// or both.
type SubmitRequest struct {
	URL          string          `json:"url,omitempty"`
	Content      string          `json:"content,omitempty"`
	Title        string          `json:"title,omitempty"`
	SourceType   SourceType      `json:"source_type,omitempty"`
	ResourceType ResourceType    `json:"resource_type,omitempty"`
	Difficulty   DifficultyLevel `json:"difficulty,omitempty"`
	IsFree       *bool           `json:"is_free,omitempty"`
	WorkRole     string          `json:"work_role,omitempty"`
}

// SubmitResult reports the outcome of a submission: stored, duplicate, or
// analyzed-but-irrelevant.
type SubmitResult struct {
	Success         bool                  `json:"success"`
	ArtifactID      string                `json:"artifact_id,omitempty"`
	IsDuplicate     bool                  `json:"is_duplicate"`
	IsRelevant      bool                  `json:"is_relevant"`
	RelevanceScore  float64               `json:"relevance_score,omitempty"`
	RelevanceReason string                `json:"relevance_reason,omitempty"`
	Stored          bool                  `json:"stored"`
	Message         string                `json:"message"`
	Classification  *ClassificationResult `json:"classification,omitempty"`
}

// ResourceQuery filters and paginates the learning-resource listing.
type ResourceQuery struct {
	WorkRole       string
	ResourceType   string
	Difficulty     string
	IsFree         *bool
	TaskID         string
	Classification string
	Query          string
	Page           int
	Limit          int
}

// ResourcePage is one page of the resource listing, newest first.
type ResourcePage struct {
	Resources  []Artifact `json:"resources"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
	HasNext    bool       `json:"has_next"`
	HasPrev    bool       `json:"has_prev"`
}
