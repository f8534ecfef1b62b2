package seed

import "time"

// Config holds configuration for a seed run.
type Config struct {
	BaseURL string        // Base URL of the service
	Timeout time.Duration // HTTP request timeout
	Workers int           // Concurrent submissions per phase
	TopN    int           // Teams requested per project during verification
	Verify  bool          // Check rankings after seeding
	Verbose bool          // Log every request
}

// Stats holds run statistics.
type Stats struct {
	EmployeesSubmitted int
	TeamsCreated       int
	ProjectsSubmitted  int
	TasksCompleted     int
	TasksSkipped       int
	TasksFailed        int
	RankingsChecked    int
	ExpectedTopMisses  int
	EvaluationsStored  int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

type accepted struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type task struct {
	ID      string `json:"task_id"`
	Kind    string `json:"kind"`
	Entity  string `json:"entity_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

type match struct {
	TeamID              string  `json:"team_id"`
	ProjectID           string  `json:"project_id"`
	EmbeddingSimilarity float64 `json:"embedding_similarity"`
	SkillCoverage       float64 `json:"skill_coverage"`
	ExperienceMatch     float64 `json:"experience_match"`
	TeamBalance         float64 `json:"team_balance"`
	FinalScore          float64 `json:"final_score"`
	MatchPercentage     float64 `json:"match_percentage"`
}

type evaluation struct {
	ProjectID string  `json:"project_id"`
	TeamID    string  `json:"team_id"`
	Rank      int     `json:"rank"`
	Score     float64 `json:"score"`
}
