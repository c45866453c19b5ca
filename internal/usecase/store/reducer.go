package store

import "assettrack/internal/domain/entity"

// State is the store content. Error implies !Loading; starting a load clears Error.
type State struct {
	Assets        []entity.Asset `json:"assets"`
	Loading       bool           `json:"loading"`
	Error         string         `json:"error,omitempty"`
	SelectedAsset *entity.Asset  `json:"selectedAsset,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Assets = cloneAssets(s.Assets)
	if s.SelectedAsset != nil {
		selected := s.SelectedAsset.Clone()
		out.SelectedAsset = &selected
	}

	return out
}

// Reduce applies action to state and returns the new state. It never mutates
// its input. Unknown actions return state unchanged.
func Reduce(state State, action Action) State {
	next := state
	switch action.Type {
	case ActionSetLoading:
		next.Loading = action.Loading
		if action.Loading {
			next.Error = ""
		}
	case ActionSetAssets:
		next.Assets = cloneAssets(action.Assets)
		if next.Assets == nil {
			next.Assets = []entity.Asset{}
		}
		next.Loading = false
	case ActionSetError:
		next.Error = action.Error
		next.Loading = false
	case ActionSetSelectedAsset:
		next.SelectedAsset = cloneAsset(action.Asset)
	case ActionAddAsset:
		if action.Asset == nil {
			return state
		}
		next.Assets = make([]entity.Asset, 0, len(state.Assets)+1)
		replaced := false
		for _, a := range state.Assets {
			if a.ID == action.Asset.ID {
				a = action.Asset.Clone()
				replaced = true
			}
			next.Assets = append(next.Assets, a)
		}
		if !replaced {
			next.Assets = append(next.Assets, action.Asset.Clone())
		}
		next.Loading = false
	case ActionUpdateAsset:
		if action.Asset == nil {
			return state
		}
		next.Assets = make([]entity.Asset, len(state.Assets))
		for i, a := range state.Assets {
			if a.ID == action.Asset.ID {
				next.Assets[i] = action.Asset.Clone()
			} else {
				next.Assets[i] = a
			}
		}
		if state.SelectedAsset != nil && state.SelectedAsset.ID == action.Asset.ID {
			next.SelectedAsset = cloneAsset(action.Asset)
		}
		next.Loading = false
	case ActionDeleteAsset:
		next.Assets = make([]entity.Asset, 0, len(state.Assets))
		for _, a := range state.Assets {
			if a.ID != action.AssetID {
				next.Assets = append(next.Assets, a)
			}
		}
		if state.SelectedAsset != nil && state.SelectedAsset.ID == action.AssetID {
			next.SelectedAsset = nil
		}
		next.Loading = false
	case ActionClearError:
		next.Error = ""
	}

	return next
}

func cloneAsset(a *entity.Asset) *entity.Asset {
	if a == nil {
		return nil
	}
	c := a.Clone()

	return &c
}

func cloneAssets(in []entity.Asset) []entity.Asset {
	if in == nil {
		return nil
	}
	out := make([]entity.Asset, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}

	return out
}
