package platform

import "fmt"

type matchResponse struct {
	MatchScore int `json:"match_score"`
}

// MatchScore fetches the compatibility score for one (CV, job) pair. There
// is no batch endpoint: scoring a feed of N jobs means N independent calls,
// and the caller owns the association of results back to job ids.
func (c *Client) MatchScore(shortID, jobID string) (int, error) {
	var resp matchResponse
	url := fmt.Sprintf("%s/match/%s/%s", c.URLs.Matching, shortID, jobID)
	if err := c.getJSON(url, nil, &resp); err != nil {
		return 0, err
	}

	return resp.MatchScore, nil
}

// MatchAllJobs asks the matching service to precompute scores for the CV
// against every open job. Best-effort warm-up after an upload.
func (c *Client) MatchAllJobs(shortID string) error {
	url := fmt.Sprintf("%s/match_all_jobs/%s", c.URLs.Matching, shortID)
	return c.getJSON(url, nil, nil)
}
