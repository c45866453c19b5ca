package filter

import (
	"strings"
	"testing"
	"time"

	"assettrack/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAssets() []entity.Asset {
	return []entity.Asset{
		{ID: "1", TagID: "PJ-A001", Brand: "Dell", Model: "Latitude", AssetType: "Computer", Status: "active", Priority: "medium",
			AssignedTo: &entity.UserRef{Name: "Alice"}, Project: &entity.ProjectRef{Name: "Phoenix"}},
		{ID: "2", TagID: "PJ-A002", Brand: "HP", Model: "EliteBook", AssetType: "Computer", Status: "Maintenance", Priority: "high"},
		{ID: "3", TagID: "GEN-7", Brand: "Caterpillar", Model: "C15", AssetType: "Generator", Status: "retired", Priority: "critical",
			Project: &entity.ProjectRef{Name: "Dell Campus"}},
		{ID: "4", TagID: "PJ-B010", Brand: "Lenovo", AssetType: "Computer", Status: "inactive", Priority: "low",
			AssignedTo: &entity.UserRef{Name: "Bob"}},
	}
}

func ids(assets []entity.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.ID
	}

	return out
}

func TestFilterAssets_WildcardIsIdentity(t *testing.T) {
	assets := sampleAssets()

	assert.Equal(t, assets, FilterAssets(assets, "", All, All, All))
	assert.Equal(t, assets, FilterAssets(assets, "  ", "", "", ""))
	assert.Empty(t, FilterAssets(nil, "", All, All, All))
}

func TestFilterAssets_Search(t *testing.T) {
	assets := sampleAssets()

	tests := []struct {
		term string
		want []string
	}{
		{term: "dell", want: []string{"1", "3"}},
		{term: "pj-a", want: []string{"1", "2"}},
		{term: "ALICE", want: []string{"1"}},
		{term: "phoenix", want: []string{"1"}},
		{term: "c15", want: []string{"3"}},
		{term: "nothing", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterAssets(assets, tt.term, All, All, All)))
		})
	}
}

func TestFilterAssets_StatusIsCaseInsensitive(t *testing.T) {
	assets := sampleAssets()

	for _, status := range []string{"active", "inactive", "maintenance", "retired"} {
		got := FilterAssets(assets, "", status, All, All)
		require.Len(t, got, 1, status)
		assert.Equal(t, status, strings.ToLower(got[0].Status))
	}

	assert.Equal(t, []string{"2"}, ids(FilterAssets(assets, "", "MAINTENANCE", All, All)))
}

func TestFilterAssets_CombinedPredicates(t *testing.T) {
	assets := sampleAssets()

	got := FilterAssets(assets, "pj", All, "high", "computer")
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFilterAssets_Idempotent(t *testing.T) {
	assets := sampleAssets()

	once := FilterAssets(assets, "pj", All, All, "Computer")
	twice := FilterAssets(once, "pj", All, All, "Computer")
	assert.Equal(t, once, twice)
}

func TestFilterAuditLogs(t *testing.T) {
	logs := []entity.AuditLog{
		{ID: "l1", Action: "CREATE", ResourceType: "Asset", User: &entity.UserRef{Name: "Alice", Email: "alice@example.com"},
			Details: entity.AuditDetails{TagID: "PJ-A001", Brand: "Dell"}},
		{ID: "l2", Action: "DELETE", ResourceType: "AssetType", User: &entity.UserRef{Name: "Bob", Email: "bob@example.com"}},
		{ID: "l3", Action: "UPDATE", ResourceType: "Asset", Details: entity.AuditDetails{Brand: "HP"}},
	}

	assert.Equal(t, logs, FilterAuditLogs(logs, "", All, All))
	assert.Len(t, FilterAuditLogs(logs, "example.com", All, All), 2)
	assert.Len(t, FilterAuditLogs(logs, "hp", All, All), 1)
	assert.Len(t, FilterAuditLogs(logs, "pj-a001", All, All), 1)
	assert.Len(t, FilterAuditLogs(logs, "", "create", All), 1)
	assert.Len(t, FilterAuditLogs(logs, "", All, "asset"), 2)

	once := FilterAuditLogs(logs, "asset", "update", All)
	assert.Equal(t, once, FilterAuditLogs(once, "asset", "update", All))
}

func TestFilterNearby(t *testing.T) {
	assets := []entity.Asset{
		{ID: "taipei101", Location: &entity.Location{Latitude: "25.033964", Longitude: "121.564472"}},
		{ID: "station", Location: &entity.Location{Latitude: "25.047924", Longitude: "121.517081"}},
		{ID: "kaohsiung", Location: &entity.Location{Latitude: "22.627278", Longitude: "120.301435"}},
		{ID: "unset", Location: &entity.Location{Latitude: "0", Longitude: "0"}},
		{ID: "nil"},
	}
	center := orb.Point{121.5654, 25.0330}

	assert.Equal(t, []string{"taipei101"}, ids(FilterNearby(assets, center, 1000)))
	assert.Equal(t, []string{"taipei101", "station"}, ids(FilterNearby(assets, center, 10000)))
}

func TestSortAssets_UpdatedAt(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)
	assets := []entity.Asset{{ID: "b", UpdatedAt: t2}, {ID: "c", UpdatedAt: t3}, {ID: "a", UpdatedAt: t1}}

	assert.Equal(t, []string{"c", "b", "a"}, ids(SortAssets(assets, "updatedAt", Desc)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(SortAssets(assets, "updatedAt", Asc)))
	assert.Equal(t, []string{"b", "c", "a"}, ids(assets), "input is not reordered")
}

func TestSortAssets_PriorityAndStability(t *testing.T) {
	assets := []entity.Asset{
		{ID: "1", Priority: "high"},
		{ID: "2", Priority: "low"},
		{ID: "3", Priority: "critical"},
		{ID: "4", Priority: "high"},
		{ID: "5", Priority: "medium"},
	}

	assert.Equal(t, []string{"2", "5", "1", "4", "3"}, ids(SortAssets(assets, "priority", Asc)))
	assert.Equal(t, []string{"3", "1", "4", "5", "2"}, ids(SortAssets(assets, "priority", Desc)))
}

func TestSortAssets_UnknownFieldKeepsOrder(t *testing.T) {
	assets := sampleAssets()

	assert.Equal(t, ids(assets), ids(SortAssets(assets, "nope", Desc)))
}

func TestSortAuditLogs_Timestamp(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	logs := []entity.AuditLog{
		{ID: "mid", Timestamp: base},
		{ID: "old", Timestamp: base.Add(-time.Hour)},
		{ID: "new", Timestamp: base.Add(time.Hour)},
	}

	got := SortAuditLogs(logs, "timestamp", Desc)
	require.Len(t, got, 3)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[2].ID)
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("asc"))
	assert.Equal(t, Asc, ParseDirection(""))
}
