// Package store holds the authoritative in-memory copy of the asset list and
// reconciles backend responses into it.
package store

import "assettrack/internal/domain/entity"

// ActionType names a state mutation.
type ActionType string

const (
	ActionSetLoading       ActionType = "SET_LOADING"
	ActionSetAssets        ActionType = "SET_ASSETS"
	ActionSetError         ActionType = "SET_ERROR"
	ActionSetSelectedAsset ActionType = "SET_SELECTED_ASSET"
	ActionAddAsset         ActionType = "ADD_ASSET"
	ActionUpdateAsset      ActionType = "UPDATE_ASSET"
	ActionDeleteAsset      ActionType = "DELETE_ASSET"
	ActionClearError       ActionType = "CLEAR_ERROR"
)

// Action is a command applied by Reduce. Only the fields relevant to Type are read.
type Action struct {
	Type    ActionType
	Loading bool
	Assets  []entity.Asset
	Asset   *entity.Asset
	AssetID string
	Error   string
}

func SetLoading(loading bool) Action {
	return Action{Type: ActionSetLoading, Loading: loading}
}

func SetAssets(assets []entity.Asset) Action {
	return Action{Type: ActionSetAssets, Assets: assets}
}

func SetError(message string) Action {
	return Action{Type: ActionSetError, Error: message}
}

// SetSelectedAsset selects asset; nil clears the selection.
func SetSelectedAsset(asset *entity.Asset) Action {
	return Action{Type: ActionSetSelectedAsset, Asset: asset}
}

func AddAsset(asset entity.Asset) Action {
	return Action{Type: ActionAddAsset, Asset: &asset}
}

func UpdateAsset(asset entity.Asset) Action {
	return Action{Type: ActionUpdateAsset, Asset: &asset}
}

func DeleteAsset(id string) Action {
	return Action{Type: ActionDeleteAsset, AssetID: id}
}

func ClearError() Action {
	return Action{Type: ActionClearError}
}
