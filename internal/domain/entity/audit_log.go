package entity

import (
	"encoding/json"
	"time"
)

// AuditLog records one administrative event. It is read-only on this side.
type AuditLog struct {
	ID           string       `json:"_id,omitempty"`
	User         *UserRef     `json:"user,omitempty"`
	Action       string       `json:"action"`
	ResourceType string       `json:"resourceType"`
	ResourceID   string       `json:"resourceId,omitempty"`
	Details      AuditDetails `json:"details"`
	Timestamp    time.Time    `json:"timestamp"`
}

// UserName returns the actor name or "" for system events.
func (l *AuditLog) UserName() string {
	if l.User == nil {
		return ""
	}

	return l.User.Name
}

// UserEmail returns the actor email or "".
func (l *AuditLog) UserEmail() string {
	if l.User == nil {
		return ""
	}

	return l.User.Email
}

// AuditDetails is the open details map of an audit log split into its
// well-known keys and everything else.
type AuditDetails struct {
	TagID     string
	AssetType string
	Location  string
	Brand     string
	Model     string
	Status    string
	Changes   map[string]any

	// Extra keeps keys this type does not know about.
	Extra map[string]any
}

var knownDetailKeys = []string{"tagId", "assetType", "location", "brand", "model", "status", "changes"}

// UnmarshalJSON accepts any object. Known keys with an unexpected shape are
// kept in Extra rather than failing the whole log.
func (d *AuditDetails) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = AuditDetails{}
	str := func(key string, dst *string) {
		v, ok := raw[key]
		if !ok {
			return
		}
		if err := json.Unmarshal(v, dst); err == nil {
			delete(raw, key)
		}
	}
	str("tagId", &d.TagID)
	str("assetType", &d.AssetType)
	str("location", &d.Location)
	str("brand", &d.Brand)
	str("model", &d.Model)
	str("status", &d.Status)
	if v, ok := raw["changes"]; ok {
		if err := json.Unmarshal(v, &d.Changes); err == nil {
			delete(raw, "changes")
		}
	}

	if len(raw) == 0 {
		return nil
	}
	d.Extra = make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		d.Extra[k] = val
	}

	return nil
}

// MarshalJSON writes the well-known keys first-class and merges Extra in.
func (d AuditDetails) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+len(knownDetailKeys))
	for k, v := range d.Extra {
		out[k] = v
	}
	put := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	put("tagId", d.TagID)
	put("assetType", d.AssetType)
	put("location", d.Location)
	put("brand", d.Brand)
	put("model", d.Model)
	put("status", d.Status)
	if len(d.Changes) > 0 {
		out["changes"] = d.Changes
	}

	return json.Marshal(out)
}

// Get looks up any key, known or not, as a display string.
func (d *AuditDetails) Get(key string) (any, bool) {
	switch key {
	case "tagId":
		return d.TagID, d.TagID != ""
	case "assetType":
		return d.AssetType, d.AssetType != ""
	case "location":
		return d.Location, d.Location != ""
	case "brand":
		return d.Brand, d.Brand != ""
	case "model":
		return d.Model, d.Model != ""
	case "status":
		return d.Status, d.Status != ""
	case "changes":
		return d.Changes, len(d.Changes) > 0
	}
	v, ok := d.Extra[key]

	return v, ok
}
