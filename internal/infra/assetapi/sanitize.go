package assetapi

import (
	"encoding/json"

	"assettrack/internal/domain/entity"
	"assettrack/internal/errors"
)

// sanitizeForUpdate encodes asset without any tag id and without an unset
// location. Tag ids are write-once on the backend; sending them back on update
// makes it reject the request.
func sanitizeForUpdate(asset *entity.Asset) ([]byte, error) {
	if asset == nil {
		return nil, errors.New("update asset: nil asset")
	}

	raw, err := json.Marshal(asset)
	if err != nil {
		return nil, errors.Wrap(err, "encode asset")
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "decode asset")
	}

	delete(fields, "tagId")

	if subAssets, ok := fields["subAssets"].(map[string]any); ok {
		for _, category := range []string{entity.MobilityMovable, entity.MobilityImmovable} {
			items, _ := subAssets[category].([]any)
			for _, item := range items {
				if m, ok := item.(map[string]any); ok {
					delete(m, "tagId")
				}
			}
		}
	}

	switch {
	case asset.Location.IsEmpty():
		delete(fields, "location")
	case !asset.Location.IsSet():
		if loc, ok := fields["location"].(map[string]any); ok {
			delete(loc, "latitude")
			delete(loc, "longitude")
		}
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "encode sanitized asset")
	}

	return out, nil
}
