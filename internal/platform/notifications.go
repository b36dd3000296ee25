package platform

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const notificationsPath = "/notifications"

// Notification kinds emitted by the backend.
const (
	NotificationNewJob         = "NEW_JOB"
	NotificationNewApplication = "NEW_APPLICATION"
)

type Notifications struct {
	Items []*Notification
}

// Notification is mutated by its recipient only, and only one way:
// unread to read.
type Notification struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Type      string    `json:"type,omitempty"`
	Message   string    `json:"message,omitempty"`
	Read      bool      `json:"read,omitempty"`
	CreatedAt Timestamp `json:"createdAt,omitempty"`

	// Payload carries the kind-specific fields (jobId, applicationId,
	// candidateName, ...) that are not part of the common shape.
	Payload map[string]interface{} `json:"-"`
}

// JobPostedEvent announces a new job to every candidate.
type JobPostedEvent struct {
	JobID    string `json:"jobId"`
	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
}

func (c *Client) NotifyJobPosted(event *JobPostedEvent) error {
	return c.postJSON(c.URLs.Notifications+"/notify/new-job", event, nil)
}

// ApplicationSubmittedEvent tells the owning recruiter about a new
// application.
type ApplicationSubmittedEvent struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	JobTitle      string `json:"jobTitle"`
	CandidateName string `json:"candidateName"`
	RecruiterID   string `json:"recruiterId"`
}

func (c *Client) NotifyApplicationSubmitted(event *ApplicationSubmittedEvent) error {
	return c.postJSON(c.URLs.Notifications+"/notify/new-application", event, nil)
}

// NotificationsByUser returns the user's notifications, newest first as the
// service orders them.
func (c *Client) NotificationsByUser(userID string) (*Notifications, error) {
	var docs []map[string]interface{}
	url := fmt.Sprintf("%s%s/user/%s", c.URLs.Notifications, notificationsPath, userID)
	if err := c.getJSON(url, nil, &docs); err != nil {
		return nil, err
	}

	items := make([]*Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := decodeNotification(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return &Notifications{Items: items}, nil
}

func (c *Client) MarkNotificationRead(id string) error {
	url := fmt.Sprintf("%s%s/%s/read", c.URLs.Notifications, notificationsPath, id)
	return c.putJSON(url, nil, nil)
}

// decodeNotification fills the common fields and collects everything the
// decoder did not consume into Payload.
func decodeNotification(doc map[string]interface{}) (*Notification, error) {
	var n Notification
	md := &mapstructure.Metadata{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:   md,
		Result:     &n,
		TagName:    "json",
		DecodeHook: timestampHook(),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}

	if len(md.Unused) > 0 {
		n.Payload = make(map[string]interface{}, len(md.Unused))
		for _, key := range md.Unused {
			n.Payload[key] = doc[key]
		}
	}

	return &n, nil
}

func (n *Notifications) Len() int {
	return len(n.Items)
}

func (n *Notifications) Unread() *Notifications {
	unread := &Notifications{}
	for _, item := range n.Items {
		if !item.Read {
			unread.Items = append(unread.Items, item)
		}
	}
	return unread
}
