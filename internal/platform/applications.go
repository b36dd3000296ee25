package platform

import "fmt"

const applicationsPath = "/applications"

// Application statuses. Pending is the only non-terminal state; accepted and
// rejected admit no further transition.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

func IsTerminalStatus(status string) bool {
	return status == StatusAccepted || status == StatusRejected
}

type Applications struct {
	Items []*Application
}

// Application is the durable record for one (candidate, job) pairing.
// MatchScore, Skills and Summary are snapshots taken at creation time and
// never recomputed.
type Application struct {
	ID  string `json:"id,omitempty"`
	Job struct {
		ID          string `json:"id,omitempty"`
		Title       string `json:"title,omitempty"`
		Company     string `json:"company,omitempty"`
		RecruiterID string `json:"recruiter_id,omitempty"`
	} `json:"job,omitempty"`
	Candidate struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"candidate,omitempty"`
	CVID       string    `json:"cv_id,omitempty"`
	CVURL      string    `json:"cv_url,omitempty"`
	MatchScore int       `json:"match_score"`
	Unscored   bool      `json:"unscored,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  Timestamp `json:"created_at,omitempty"`
	UpdatedAt  Timestamp `json:"updated_at,omitempty"`
}

// CreateApplicationRequest is the submission payload. The store enforces
// uniqueness on (candidate_id, job_id) and answers a conflict with 409,
// surfaced here as ErrAlreadyApplied.
type CreateApplicationRequest struct {
	JobID         string   `json:"job_id"`
	JobTitle      string   `json:"job_title"`
	CandidateID   string   `json:"candidate_id"`
	CandidateName string   `json:"candidate_name"`
	CVID          string   `json:"cv_id,omitempty"`
	CVURL         string   `json:"cv_url"`
	MatchScore    int      `json:"match_score"`
	Unscored      bool     `json:"unscored,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	Summary       string   `json:"summary,omitempty"`
}

func (c *Client) CreateApplication(req *CreateApplicationRequest) (*Application, error) {
	var created Application
	if err := c.postJSON(c.URLs.Applications+applicationsPath, req, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

func (c *Client) ApplicationsByCandidate(candidateID string) (*Applications, error) {
	return c.listApplications(fmt.Sprintf("%s%s/candidate/%s", c.URLs.Applications, applicationsPath, candidateID))
}

func (c *Client) ApplicationsByRecruiter(recruiterID string) (*Applications, error) {
	return c.listApplications(fmt.Sprintf("%s%s/recruiter/%s", c.URLs.Applications, applicationsPath, recruiterID))
}

func (c *Client) listApplications(url string) (*Applications, error) {
	var items []*Application
	if err := c.getJSON(url, nil, &items); err != nil {
		return nil, err
	}

	return &Applications{Items: items}, nil
}

func (c *Client) UpdateApplicationStatus(id, status string) error {
	url := fmt.Sprintf("%s%s/%s/status", c.URLs.Applications, applicationsPath, id)
	return c.putJSON(url, map[string]string{"status": status}, nil)
}

func (c *Client) DeleteApplication(id string) error {
	url := fmt.Sprintf("%s%s/%s", c.URLs.Applications, applicationsPath, id)
	return c.delete(url)
}

func (a *Applications) Len() int {
	return len(a.Items)
}

func (a *Applications) FindByID(id string) *Application {
	for _, app := range a.Items {
		if app.ID == id {
			return app
		}
	}
	return nil
}

// JobIDs returns the distinct job ids the applications reference.
func (a *Applications) JobIDs() []string {
	seen := make(map[string]bool, len(a.Items))
	ids := make([]string, 0, len(a.Items))
	for _, app := range a.Items {
		if seen[app.Job.ID] {
			continue
		}
		seen[app.Job.ID] = true
		ids = append(ids, app.Job.ID)
	}
	return ids
}
