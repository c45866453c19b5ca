// Package filter narrows and orders asset and audit log collections. Every
// function is pure: inputs are never modified and results are new slices.
package filter

import (
	"strings"

	"assettrack/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// All matches every value of a categorical filter. An empty value does too.
const All = "all"

// FilterAssets keeps assets whose tag id, brand, model, assignee name or
// project name contain searchTerm and whose status, priority and type match.
func FilterAssets(assets []entity.Asset, searchTerm, status, priority, assetType string) []entity.Asset {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]entity.Asset, 0, len(assets))
	for i := range assets {
		a := &assets[i]
		if term != "" && !containsAny(term, a.TagID, a.Brand, a.Model, a.AssignedName(), a.ProjectName()) {
			continue
		}
		if !matches(status, a.Status) || !matches(priority, a.Priority) || !matches(assetType, a.AssetType) {
			continue
		}
		out = append(out, *a)
	}

	return out
}

// FilterAuditLogs keeps logs whose user name, user email, resource type,
// tag id or brand contain searchTerm and whose action and resource type match.
func FilterAuditLogs(logs []entity.AuditLog, searchTerm, action, resourceType string) []entity.AuditLog {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]entity.AuditLog, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		if term != "" && !containsAny(term, l.UserName(), l.UserEmail(), l.ResourceType, l.Details.TagID, l.Details.Brand) {
			continue
		}
		if !matches(action, l.Action) || !matches(resourceType, l.ResourceType) {
			continue
		}
		out = append(out, *l)
	}

	return out
}

// FilterNearby keeps assets within radiusMeters of center. Assets without a
// coordinate are dropped.
func FilterNearby(assets []entity.Asset, center orb.Point, radiusMeters float64) []entity.Asset {
	out := make([]entity.Asset, 0, len(assets))
	for i := range assets {
		p, ok := assets[i].Location.Point()
		if !ok {
			continue
		}
		if geo.DistanceHaversine(center, p) <= radiusMeters {
			out = append(out, assets[i])
		}
	}

	return out
}

func matches(want, got string) bool {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, All) {
		return true
	}

	return strings.EqualFold(want, got)
}

func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}

	return false
}
