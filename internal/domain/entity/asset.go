// Package entity contains the core business objects of the project.
package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Asset statuses.
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

// Asset priorities, lowest first.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Mobility categories; they double as the sub-asset collection names.
const (
	MobilityMovable   = "movable"
	MobilityImmovable = "immovable"
)

// Asset is a physical item under management. The backend owns it; TagID is
// assigned once and never sent back on update.
type Asset struct {
	ID    string `json:"_id,omitempty"`
	TagID string `json:"tagId,omitempty"`

	AssetType        string `json:"assetType,omitempty"`
	Subcategory      string `json:"subcategory,omitempty"`
	MobilityCategory string `json:"mobilityCategory,omitempty"`

	Brand              string `json:"brand,omitempty"`
	Model              string `json:"model,omitempty"`
	SerialNumber       string `json:"serialNumber,omitempty"`
	Capacity           string `json:"capacity,omitempty"`
	YearOfInstallation string `json:"yearOfInstallation,omitempty"`

	Project    *ProjectRef `json:"project,omitempty"`
	AssignedTo *UserRef    `json:"assignedTo,omitempty"`
	Status     string      `json:"status,omitempty"`
	Priority   string      `json:"priority,omitempty"`

	Location *Location `json:"location,omitempty"`

	DigitalAssets *DigitalAssets `json:"digitalAssets,omitempty"`

	Tags         []string          `json:"tags,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
	Compliance   *Compliance       `json:"compliance,omitempty"`
	ScanHistory  []ScanEvent       `json:"scanHistory,omitempty"`
	SubAssets    *SubAssets        `json:"subAssets,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// ProjectRef is the id+name pair an asset is filed under.
type ProjectRef struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name,omitempty"`
}

// UserRef identifies a dashboard user.
type UserRef struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Location holds coordinates as the backend stores them: decimal strings.
type Location struct {
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	Building  string `json:"building,omitempty"`
	Floor     string `json:"floor,omitempty"`
	Room      string `json:"room,omitempty"`
	Address   string `json:"address,omitempty"`
}

// IsSet reports whether the location carries a real coordinate. Empty
// strings and the "0"/"0" pair both mean unset.
func (l *Location) IsSet() bool {
	if l == nil {
		return false
	}
	lat, lng, ok := l.coordinates()
	if !ok {
		return false
	}

	return lat != 0 || lng != 0
}

// IsEmpty reports whether the location has neither coordinates nor any
// descriptive field.
func (l *Location) IsEmpty() bool {
	if l == nil {
		return true
	}

	return !l.IsSet() && l.Building == "" && l.Floor == "" && l.Room == "" && l.Address == ""
}

// Point returns the location as an orb point (lng, lat).
func (l *Location) Point() (orb.Point, bool) {
	if !l.IsSet() {
		return orb.Point{}, false
	}
	lat, lng, _ := l.coordinates()

	return orb.Point{lng, lat}, true
}

// SetPoint stores p as decimal strings.
func (l *Location) SetPoint(p orb.Point) {
	l.Latitude = strconv.FormatFloat(p.Lat(), 'f', 6, 64)
	l.Longitude = strconv.FormatFloat(p.Lon(), 'f', 6, 64)
}

// String renders "lat, lng" or an empty string when unset.
func (l *Location) String() string {
	if !l.IsSet() {
		return ""
	}

	return strings.TrimSpace(l.Latitude) + ", " + strings.TrimSpace(l.Longitude)
}

func (l *Location) coordinates() (lat, lng float64, ok bool) {
	latStr, lngStr := strings.TrimSpace(l.Latitude), strings.TrimSpace(l.Longitude)
	if latStr == "" || lngStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}

	return lat, lng, true
}

// Compliance tracks certifications and regulatory obligations.
type Compliance struct {
	Certifications []string   `json:"certifications,omitempty"`
	ExpiryDate     *time.Time `json:"expiryDate,omitempty"`
	Regulations    []string   `json:"regulations,omitempty"`
}

// ScanEvent is one entry of the append-only scan log.
type ScanEvent struct {
	ScannedAt time.Time `json:"scannedAt,omitzero"`
	ScannedBy *UserRef  `json:"scannedBy,omitempty"`
	ScanType  string    `json:"scanType,omitempty"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// SubAssets groups the components of an asset by mobility.
type SubAssets struct {
	Movable   []SubAsset `json:"movable"`
	Immovable []SubAsset `json:"immovable"`
}

// Category returns the collection named by category, or nil.
func (s *SubAssets) Category(category string) []SubAsset {
	if s == nil {
		return nil
	}
	switch category {
	case MobilityMovable:
		return s.Movable
	case MobilityImmovable:
		return s.Immovable
	default:
		return nil
	}
}

// SubAsset is a scaled-down asset record nested inside its parent.
type SubAsset struct {
	ID                 string         `json:"_id,omitempty"`
	TagID              string         `json:"tagId,omitempty"`
	AssetName          string         `json:"assetName,omitempty"`
	Brand              string         `json:"brand,omitempty"`
	Model              string         `json:"model,omitempty"`
	SerialNumber       string         `json:"serialNumber,omitempty"`
	Capacity           string         `json:"capacity,omitempty"`
	YearOfInstallation string         `json:"yearOfInstallation,omitempty"`
	Status             string         `json:"status,omitempty"`
	Location           *Location      `json:"location,omitempty"`
	DigitalAssets      *DigitalAssets `json:"digitalAssets,omitempty"`
	Notes              string         `json:"notes,omitempty"`
}

// AssignedName returns the assignee's name or "" when unassigned.
func (a *Asset) AssignedName() string {
	if a.AssignedTo == nil {
		return ""
	}

	return a.AssignedTo.Name
}

// ProjectName returns the project name or "" when not filed.
func (a *Asset) ProjectName() string {
	if a.Project == nil {
		return ""
	}

	return a.Project.Name
}

// Clone returns a copy that shares no mutable state with a.
func (a Asset) Clone() Asset {
	out := a
	if a.Project != nil {
		p := *a.Project
		out.Project = &p
	}
	if a.AssignedTo != nil {
		u := *a.AssignedTo
		out.AssignedTo = &u
	}
	if a.Location != nil {
		l := *a.Location
		out.Location = &l
	}
	out.DigitalAssets = a.DigitalAssets.Clone()
	out.Tags = append([]string(nil), a.Tags...)
	if a.CustomFields != nil {
		out.CustomFields = make(map[string]string, len(a.CustomFields))
		for k, v := range a.CustomFields {
			out.CustomFields[k] = v
		}
	}
	if a.Compliance != nil {
		c := *a.Compliance
		c.Certifications = append([]string(nil), a.Compliance.Certifications...)
		c.Regulations = append([]string(nil), a.Compliance.Regulations...)
		out.Compliance = &c
	}
	out.ScanHistory = append([]ScanEvent(nil), a.ScanHistory...)
	if a.SubAssets != nil {
		out.SubAssets = &SubAssets{
			Movable:   cloneSubAssets(a.SubAssets.Movable),
			Immovable: cloneSubAssets(a.SubAssets.Immovable),
		}
	}

	return out
}

func cloneSubAssets(in []SubAsset) []SubAsset {
	if in == nil {
		return nil
	}
	out := make([]SubAsset, len(in))
	for i, s := range in {
		out[i] = s
		if s.Location != nil {
			l := *s.Location
			out[i].Location = &l
		}
		out[i].DigitalAssets = s.DigitalAssets.Clone()
	}

	return out
}

// PriorityRank orders priorities low < medium < high < critical. Unknown
// values rank below low.
func PriorityRank(priority string) int {
	switch strings.ToLower(priority) {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}
