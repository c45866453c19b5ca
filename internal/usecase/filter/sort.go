package filter

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"assettrack/internal/domain/entity"
)

// Direction orders a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}

	return Asc
}

type comparator[T any] func(a, b *T) int

var assetComparators = map[string]comparator[entity.Asset]{
	"tagId":      byString(func(a *entity.Asset) string { return a.TagID }),
	"assetType":  byString(func(a *entity.Asset) string { return a.AssetType }),
	"brand":      byString(func(a *entity.Asset) string { return a.Brand }),
	"model":      byString(func(a *entity.Asset) string { return a.Model }),
	"status":     byString(func(a *entity.Asset) string { return a.Status }),
	"assignedTo": byString(func(a *entity.Asset) string { return a.AssignedName() }),
	"project":    byString(func(a *entity.Asset) string { return a.ProjectName() }),
	"priority": func(a, b *entity.Asset) int {
		return cmp.Compare(entity.PriorityRank(a.Priority), entity.PriorityRank(b.Priority))
	},
	"createdAt": byTime(func(a *entity.Asset) time.Time { return a.CreatedAt }),
	"updatedAt": byTime(func(a *entity.Asset) time.Time { return a.UpdatedAt }),
	"complianceExpiry": byTime(func(a *entity.Asset) time.Time {
		if a.Compliance == nil || a.Compliance.ExpiryDate == nil {
			return time.Time{}
		}

		return *a.Compliance.ExpiryDate
	}),
}

var auditComparators = map[string]comparator[entity.AuditLog]{
	"timestamp":    byTime(func(l *entity.AuditLog) time.Time { return l.Timestamp }),
	"action":       byString(func(l *entity.AuditLog) string { return l.Action }),
	"resourceType": byString(func(l *entity.AuditLog) string { return l.ResourceType }),
	"user":         byString(func(l *entity.AuditLog) string { return l.UserName() }),
	"tagId":        byString(func(l *entity.AuditLog) string { return l.Details.TagID }),
}

// SortAssets returns assets stably ordered by field. An unknown field keeps
// the input order.
func SortAssets(assets []entity.Asset, field string, direction Direction) []entity.Asset {
	return sortBy(assets, assetComparators[field], direction)
}

// SortAuditLogs returns logs stably ordered by field. An unknown field keeps
// the input order.
func SortAuditLogs(logs []entity.AuditLog, field string, direction Direction) []entity.AuditLog {
	return sortBy(logs, auditComparators[field], direction)
}

// AssetSortFields lists the fields SortAssets understands.
func AssetSortFields() []string {
	fields := make([]string, 0, len(assetComparators))
	for f := range assetComparators {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	return fields
}

func sortBy[T any](items []T, compare comparator[T], direction Direction) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	if compare == nil {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		c := compare(&a, &b)
		if direction == Desc {
			return -c
		}

		return c
	})

	return out
}

func byString[T any](get func(*T) string) comparator[T] {
	return func(a, b *T) int {
		return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

// byTime compares epoch milliseconds so sub-millisecond noise does not reorder.
func byTime[T any](get func(*T) time.Time) comparator[T] {
	return func(a, b *T) int {
		return cmp.Compare(get(a).UnixMilli(), get(b).UnixMilli())
	}
}
