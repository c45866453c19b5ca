package entity

// Field types an asset type can declare.
const (
	FieldTypeText     = "text"
	FieldTypeDropdown = "dropdown"
)

// AssetType is a user-defined schema naming the custom fields that apply to a
// category of asset. Assets reference it by name only.
type AssetType struct {
	ID     string  `json:"_id,omitempty"`
	Name   string  `json:"name" validate:"required"`
	Fields []Field `json:"fields" validate:"dive"`
}

// Field is one custom field of an asset type.
type Field struct {
	Label     string   `json:"label" validate:"required"`
	FieldType string   `json:"fieldType" validate:"required,oneof=text dropdown"`
	Options   []string `json:"options,omitempty" validate:"required_if=FieldType dropdown"`
}
