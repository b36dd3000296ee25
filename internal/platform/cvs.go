package platform

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const cvPath = "/cv"

type CVRecords struct {
	Items []*CVRecord
}

type CVRecord struct {
	ID               string    `json:"id,omitempty"`
	OriginalFilename string    `json:"original_filename,omitempty"`
	SavedFilename    string    `json:"saved_filename,omitempty"`
	UploadTime       Timestamp `json:"upload_time,omitempty"`
	UserID           string    `json:"user_id,omitempty"`
}

// ShortID is the externally visible identifier embedded as the saved
// filename's prefix, up to the first separator. It is the join key the
// analysis and matching services are keyed by.
func (r *CVRecord) ShortID() string {
	short, _, _ := strings.Cut(r.SavedFilename, "_")
	return short
}

type cvListResponse struct {
	CVs []*CVRecord `json:"cvs"`
}

// ListCVs returns the candidate's CV documents, newest upload first. The
// registry endpoint returns every stored document, so ownership filtering
// happens here.
func (c *Client) ListCVs(candidateID string) (*CVRecords, error) {
	var resp cvListResponse
	if err := c.getJSON(c.URLs.CVs+cvPath+"/list", nil, &resp); err != nil {
		return nil, err
	}

	items := make([]*CVRecord, 0, len(resp.CVs))
	for _, cv := range resp.CVs {
		if candidateID != "" && cv.UserID != candidateID {
			continue
		}
		items = append(items, cv)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UploadTime.After(items[j].UploadTime.Time)
	})

	return &CVRecords{Items: items}, nil
}

type cvUploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// UploadCV stores a new CV document and returns its saved filename. No
// partial record exists when an error is returned.
func (c *Client) UploadCV(candidateID, filename string, contents io.Reader) (string, error) {
	var resp cvUploadResponse
	fields := map[string]string{"user_id": candidateID}
	if err := c.postFile(c.URLs.CVs+cvPath+"/upload", filename, contents, fields, &resp); err != nil {
		return "", err
	}

	return resp.Filename, nil
}

func (c *Client) GetCV(cvID string) (*CVRecord, error) {
	var cv CVRecord
	url := fmt.Sprintf("%s%s/get/%s", c.URLs.CVs, cvPath, cvID)
	if err := c.getJSON(url, nil, &cv); err != nil {
		return nil, err
	}
	cv.ID = cvID

	return &cv, nil
}

func (c *Client) DeleteCV(savedFilename string) error {
	url := fmt.Sprintf("%s%s/delete/%s", c.URLs.CVs, cvPath, savedFilename)
	return c.delete(url)
}

// DownloadURL and ViewURL are handed to the UI layer as-is; the documents
// themselves are never pulled through this client.
func (c *Client) DownloadURL(savedFilename string) string {
	return fmt.Sprintf("%s%s/download/%s", c.URLs.CVs, cvPath, savedFilename)
}

func (c *Client) ViewURL(shortID string) string {
	return fmt.Sprintf("%s%s/view/%s", c.URLs.CVs, cvPath, shortID)
}

func (r *CVRecords) Len() int {
	return len(r.Items)
}

func (r *CVRecords) FindByID(id string) *CVRecord {
	for _, cv := range r.Items {
		if cv.ID == id {
			return cv
		}
	}
	return nil
}

func (r *CVRecords) FindByOriginalFilename(name string) *CVRecord {
	for _, cv := range r.Items {
		if cv.OriginalFilename == name {
			return cv
		}
	}
	return nil
}

func (r *CVRecords) FindBySavedFilename(name string) *CVRecord {
	for _, cv := range r.Items {
		if cv.SavedFilename == name {
			return cv
		}
	}
	return nil
}
