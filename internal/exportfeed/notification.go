package exportfeed

import (
	"encoding/json"
)

// Notification is one report-ready message from the export queue.
type Notification struct {
	ReportName string
	ResultKey  string
}

type notificationEnvelope struct {
	Message json.RawMessage `json:"Message"`
}

type notificationBody struct {
	ReportName      string `json:"reportName"`
	ReportResultXML string `json:"reportResultXml"`
}

// ParseNotification decodes an export queue message body. Queue deliveries
// wrap the payload in an SNS-style envelope whose Message field is itself a
// JSON document, sometimes double-encoded as a string.
func ParseNotification(raw string) (*Notification, bool) {
	var envelope notificationEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, false
	}

	payload := []byte(envelope.Message)
	if len(payload) == 0 {
		payload = []byte(raw)
	} else {
		// Message may be a JSON string holding the real document.
		var inner string
		if err := json.Unmarshal(payload, &inner); err == nil {
			payload = []byte(inner)
		}
	}

	var body notificationBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, false
	}
	if body.ReportName == "" || body.ReportResultXML == "" {
		return nil, false
	}
	return &Notification{ReportName: body.ReportName, ResultKey: body.ReportResultXML}, true
}
