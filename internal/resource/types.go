package resource

import (
	"encoding/json"
	"strings"
)

// page is the envelope some deployments wrap list responses in.
type page struct {
	Data     []json.RawMessage `json:"data"`
	Items    []json.RawMessage `json:"items"`
	Next     string            `json:"next"`
	NextPage string            `json:"nextPage"`
}

func (p page) records() []json.RawMessage {
	if len(p.Data) > 0 {
		return p.Data
	}
	return p.Items
}

func (p page) next() string {
	if p.Next != "" {
		return p.Next
	}
	return p.NextPage
}

// kindFor infers a work-item kind label from a resource path such as
// "purchase-orders" or "statements-of-work".
func kindFor(resource string) string {
	r := strings.ToLower(strings.Trim(resource, "/"))
	if i := strings.LastIndex(r, "/"); i >= 0 {
		r = r[i+1:]
	}
	switch {
	case strings.Contains(r, "purchase"):
		return "purchase-order"
	case strings.Contains(r, "statement"), strings.HasPrefix(r, "sow"), strings.Contains(r, "contract"):
		return "contract"
	case strings.Contains(r, "invoice"):
		return "invoice"
	case strings.Contains(r, "timecard"), strings.Contains(r, "timesheet"):
		return "timecard"
	}
	return ""
}
