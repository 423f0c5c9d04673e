package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opsdeck/opsdeck/pkg/types"
)

// rawAlert covers the alert item shapes of the Alertmanager v2 API, the
// legacy Grafana alerts API and the Prometheus alerts API.
type rawAlert struct {
	Fingerprint  string          `json:"fingerprint"`
	ID           any             `json:"id"`
	Name         string          `json:"name"`
	Labels       map[string]any  `json:"labels"`
	Annotations  map[string]any  `json:"annotations"`
	Status       json.RawMessage `json:"status"`
	State        string          `json:"state"`
	StartsAt     string          `json:"startsAt"`
	ActiveAt     string          `json:"activeAt"`
	EndsAt       *string         `json:"endsAt"`
	GeneratorURL string          `json:"generatorURL"`
}

// alertList is the object form of an alerts response. Data may itself be a
// list or an object holding an alerts list (Prometheus API).
type alertList struct {
	Alerts []json.RawMessage `json:"alerts"`
	Data   json.RawMessage   `json:"data"`
}

// Alerts decodes an alerting backend response body. The body may be a bare
// list or an object with an "alerts" or "data" list. endpoint is recorded on
// every record. Items that fail to decode are skipped.
func Alerts(body []byte, endpoint string) ([]types.AlertRecord, error) {
	items, err := alertItems(body)
	if err != nil {
		return nil, err
	}
	out := make([]types.AlertRecord, 0, len(items))
	for _, raw := range items {
		var a rawAlert
		if err := json.Unmarshal(raw, &a); err != nil {
			continue
		}
		out = append(out, a.record(endpoint))
	}
	return out, nil
}

// errAlertShape reports a JSON body that holds no recognizable alert list.
var errAlertShape = errors.New("no alert list in payload")

func alertItems(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode alert list: %w", err)
		}
		return items, nil
	}

	var obj alertList
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("decode alert object: %w", err)
	}
	if obj.Alerts != nil {
		return obj.Alerts, nil
	}
	if isNull(obj.Data) {
		return nil, errAlertShape
	}
	var items []json.RawMessage
	if err := json.Unmarshal(obj.Data, &items); err == nil {
		return items, nil
	}
	var nested alertList
	if err := json.Unmarshal(obj.Data, &nested); err == nil && nested.Alerts != nil {
		return nested.Alerts, nil
	}
	return nil, errAlertShape
}

// isNull is true for an absent or JSON null value.
func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func (a rawAlert) record(endpoint string) types.AlertRecord {
	labels := stringMap(a.Labels)
	annotations := stringMap(a.Annotations)

	return types.AlertRecord{
		ID:           first(a.Fingerprint, idString(a.ID), "alert_"+uuid.NewString()),
		Name:         first(labels["alertname"], annotations["summary"], a.Name, "Unknown Alert"),
		Status:       first(statusState(a.Status), a.State, "unknown"),
		Severity:     first(labels["severity"], annotations["severity"], "warning"),
		Description:  first(annotations["description"], annotations["message"], labels["alertname"]),
		StartsAt:     first(a.StartsAt, a.ActiveAt),
		EndsAt:       nonEmpty(a.EndsAt),
		GeneratorURL: a.GeneratorURL,
		Labels:       labels,
		Source:       types.AlertSourceGrafana,
		Endpoint:     endpoint,
	}
}

// statusState reads status.state when status is an object, or status itself
// when it is a string.
func statusState(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.State
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}

func stringMap(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		} else if v != nil {
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// first returns the first non-empty argument.
func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
