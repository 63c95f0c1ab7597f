package match

import "time"

type Criteria struct {
	SkillsMatchPct  float64 `json:"skillsMatchPct"`
	LocationMatch   bool    `json:"locationMatch"`
	ExperienceMatch bool    `json:"experienceMatch"`
	SalaryMatch     bool    `json:"salaryMatch"`
}

type Result struct {
	ID          string    `json:"-"`
	JobID       string    `json:"jobId"`
	JobSeekerID string    `json:"jobSeekerId"`
	EmployerID  string    `json:"employerId"`
	Score       float64   `json:"score"`
	Criteria    Criteria  `json:"criteria"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// PairKey identifies the (job, seeker) pair a match is unique on.
func PairKey(jobID, jobSeekerID string) string {
	return jobID + ":" + jobSeekerID
}
