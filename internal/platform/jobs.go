package platform

import "fmt"

const jobsPath = "/jobs"

type Jobs struct {
	Items []*Job
}

// Job is immutable after creation except via UpdateJob, and owned by exactly
// one recruiter.
type Job struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Company     string    `json:"company,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	RecruiterID string    `json:"recruiter_id,omitempty"`
	CreatedAt   Timestamp `json:"created_at,omitempty"`
}

// JobPatch carries the editable fields for UpdateJob.
type JobPatch struct {
	Title       string   `json:"title,omitempty"`
	Company     string   `json:"company,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

func (c *Client) ListJobs() (*Jobs, error) {
	var items []*Job
	if err := c.getJSON(c.URLs.Jobs+jobsPath, nil, &items); err != nil {
		return nil, err
	}

	return &Jobs{Items: items}, nil
}

func (c *Client) JobsByRecruiter(recruiterID string) (*Jobs, error) {
	var items []*Job
	url := fmt.Sprintf("%s%s/recruiter/%s", c.URLs.Jobs, jobsPath, recruiterID)
	if err := c.getJSON(url, nil, &items); err != nil {
		return nil, err
	}

	return &Jobs{Items: items}, nil
}

func (c *Client) GetJob(id string) (*Job, error) {
	var job Job
	url := fmt.Sprintf("%s%s/%s", c.URLs.Jobs, jobsPath, id)
	if err := c.getJSON(url, nil, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (c *Client) CreateJob(job *Job) (*Job, error) {
	var created Job
	if err := c.postJSON(c.URLs.Jobs+jobsPath, job, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

func (c *Client) UpdateJob(id string, patch *JobPatch) error {
	url := fmt.Sprintf("%s%s/%s", c.URLs.Jobs, jobsPath, id)
	return c.putJSON(url, patch, nil)
}

func (c *Client) DeleteJob(id string) error {
	url := fmt.Sprintf("%s%s/%s", c.URLs.Jobs, jobsPath, id)
	return c.delete(url)
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) IDs() []string {
	ids := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// Exclude removes jobs from the list by id. Preserves order.
func (j *Jobs) Exclude(ids []string) []string {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	var excluded []string
	kept := j.Items[:0]
	for _, job := range j.Items {
		if drop[job.ID] {
			excluded = append(excluded, job.ID)
			continue
		}
		kept = append(kept, job)
	}
	j.Items = kept

	return excluded
}
