package platform

// Analysis is the extraction service's view of one CV document.
type Analysis struct {
	Skills  []string `json:"skills"`
	Summary string   `json:"summary"`
}

type analyzeResponse struct {
	ParsedAnalysis *Analysis `json:"parsed_analysis"`
}

// Analyze fetches the extracted skills and summary for a stored CV. Pure
// read, idempotent, safe to retry; callers treat failures as a missing
// enrichment rather than a workflow error.
func (c *Client) Analyze(savedFilename string) (*Analysis, error) {
	var resp analyzeResponse
	body := map[string]string{"filename": savedFilename}
	if err := c.postJSON(c.URLs.Analysis+"/analyze-from-cvservice", body, &resp); err != nil {
		return nil, err
	}

	if resp.ParsedAnalysis == nil {
		return &Analysis{Skills: []string{}}, nil
	}
	if resp.ParsedAnalysis.Skills == nil {
		resp.ParsedAnalysis.Skills = []string{}
	}

	return resp.ParsedAnalysis, nil
}
