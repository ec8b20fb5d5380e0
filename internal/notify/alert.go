// Package notify delivers alerts to an incoming-webhook endpoint using the
// Slack attachment format.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"
)

// Severity is the attachment color tag.
type Severity string

const (
	SeverityGood    Severity = "good"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// DefaultFooter labels every attachment.
const DefaultFooter = "Backend.im Alert System"

// Field is one attachment field. Short fields render side by side.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Alert is an outbound notification. It is not kept after Send returns.
type Alert struct {
	ID       string
	Kind     string
	Title    string
	Text     string
	Severity Severity
	Fields   []Field
	Time     time.Time
}

// NewAlert creates an alert with a fresh ID.
func NewAlert(kind, title, text string, severity Severity, at time.Time, fields ...Field) Alert {
	return Alert{
		ID:       uuid.NewString(),
		Kind:     kind,
		Title:    title,
		Text:     text,
		Severity: severity,
		Fields:   fields,
		Time:     at,
	}
}

// BuildPayload renders the attachment JSON for a. The fields array is only
// present when a has fields.
func BuildPayload(a Alert, footer string) ([]byte, error) {
	if footer == "" {
		footer = DefaultFooter
	}

	payload := []byte(`{"attachments":[{}]}`)
	set := []attachmentValue{
		{"color", string(a.Severity)},
		{"title", a.Title},
		{"text", a.Text},
		{"footer", footer},
		{"ts", a.Time.Unix()},
	}
	if len(a.Fields) > 0 {
		set = append(set, attachmentValue{"fields", a.Fields})
	}

	var err error
	for _, v := range set {
		payload, err = sjson.SetBytes(payload, "attachments.0."+v.key, v.value)
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", v.key, err)
		}
	}
	return payload, nil
}

type attachmentValue struct {
	key   string
	value interface{}
}
