// Package report renders asset and audit log collections as PDF and Excel
// documents.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"assettrack/internal/domain/entity"
)

const timestampLayout = "2006-01-02 15:04"

// column describes one table column of a record type.
type column[T any] struct {
	Title string
	Width float64 // mm, PDF only
	Value func(*T) string
}

var assetColumns = []column[entity.Asset]{
	{Title: "Tag ID", Width: 30, Value: func(a *entity.Asset) string { return a.TagID }},
	{Title: "Asset Type", Width: 30, Value: func(a *entity.Asset) string { return a.AssetType }},
	{Title: "Brand", Width: 28, Value: func(a *entity.Asset) string { return a.Brand }},
	{Title: "Model", Width: 28, Value: func(a *entity.Asset) string { return a.Model }},
	{Title: "Status", Width: 22, Value: func(a *entity.Asset) string { return a.Status }},
	{Title: "Priority", Width: 20, Value: func(a *entity.Asset) string { return a.Priority }},
	{Title: "Assigned To", Width: 32, Value: func(a *entity.Asset) string { return a.AssignedName() }},
	{Title: "Project", Width: 32, Value: func(a *entity.Asset) string { return a.ProjectName() }},
	{Title: "Location", Width: 55, Value: func(a *entity.Asset) string { return locationLabel(a.Location) }},
}

var auditColumns = []column[entity.AuditLog]{
	{Title: "Timestamp", Width: 34, Value: func(l *entity.AuditLog) string { return formatTime(l.Timestamp) }},
	{Title: "User", Width: 34, Value: func(l *entity.AuditLog) string { return l.UserName() }},
	{Title: "Email", Width: 46, Value: func(l *entity.AuditLog) string { return l.UserEmail() }},
	{Title: "Action", Width: 24, Value: func(l *entity.AuditLog) string { return l.Action }},
	{Title: "Resource", Width: 30, Value: func(l *entity.AuditLog) string { return l.ResourceType }},
	{Title: "Tag ID", Width: 30, Value: func(l *entity.AuditLog) string { return l.Details.TagID }},
	{Title: "Details", Width: 79, Value: func(l *entity.AuditLog) string { return describeDetails(&l.Details) }},
}

func titles[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Title
	}

	return out
}

func widths[T any](cols []column[T]) []float64 {
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = c.Width
	}

	return out
}

func cells[T any](cols []column[T], items []T) [][]string {
	out := make([][]string, len(items))
	for i := range items {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = c.Value(&items[i])
		}
		out[i] = row
	}

	return out
}

// locationLabel prefers the descriptive fields and falls back to coordinates.
func locationLabel(l *entity.Location) string {
	if l == nil {
		return ""
	}
	var parts []string
	if l.Address != "" {
		parts = append(parts, l.Address)
	}
	if l.Building != "" {
		parts = append(parts, l.Building)
	}
	if l.Floor != "" {
		parts = append(parts, "Floor "+l.Floor)
	}
	if l.Room != "" {
		parts = append(parts, "Room "+l.Room)
	}
	if len(parts) == 0 {
		return l.String()
	}

	return strings.Join(parts, ", ")
}

// describeDetails flattens audit details into "key: value" pairs, tag id
// excluded since it has its own column.
func describeDetails(d *entity.AuditDetails) string {
	pairs := map[string]string{}
	add := func(k, v string) {
		if v != "" {
			pairs[k] = v
		}
	}
	add("assetType", d.AssetType)
	add("brand", d.Brand)
	add("model", d.Model)
	add("status", d.Status)
	add("location", d.Location)
	for k, v := range d.Changes {
		add("changed "+k, fmt.Sprint(v))
	}
	for k, v := range d.Extra {
		add(k, fmt.Sprint(v))
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + ": " + pairs[k]
	}

	return strings.Join(out, "; ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(timestampLayout)
}

// count is one line of a summary block.
type count struct {
	Label string
	N     int
}

// countBy tallies items per key, largest first then by label. Empty keys
// are reported as "Unspecified".
func countBy[T any](items []T, key func(*T) string) []count {
	tally := map[string]int{}
	for i := range items {
		k := strings.TrimSpace(key(&items[i]))
		if k == "" {
			k = "Unspecified"
		}
		tally[k]++
	}

	out := make([]count, 0, len(tally))
	for label, n := range tally {
		out = append(out, count{Label: label, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}

		return out[i].Label < out[j].Label
	})

	return out
}
