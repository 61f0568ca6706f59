package knowledge

import "github.com/scbrown/blockwright/internal/model"

// Minimal returns the built-in knowledge base used when the configured file
// cannot be loaded: two motion blocks and the green flag hat block.
func Minimal() *Base {
	return NewBase([]Category{
		{
			Name: "motion",
			Info: CategoryInfo{Color: "#4C97FF"},
			Definitions: []model.Definition{
				{
					ID:             "motion_movesteps",
					Description:    "Move forward/backward by steps",
					KidExplanation: "Makes your sprite walk!",
					Inputs:         []string{"STEPS"},
					Defaults:       map[string]model.Value{"STEPS": model.Int(10)},
				},
				{
					ID:             "motion_changexby",
					Description:    "Move left/right",
					KidExplanation: "Makes your sprite move sideways!",
					Inputs:         []string{"DX"},
					Defaults:       map[string]model.Value{"DX": model.Int(10)},
				},
			},
		},
		{
			Name: "events",
			Info: CategoryInfo{Color: "#FFBF00"},
			Definitions: []model.Definition{
				{
					ID:             "event_whenflagclicked",
					Description:    "When green flag clicked",
					KidExplanation: "Starts your program!",
					Inputs:         []string{},
					Defaults:       map[string]model.Value{},
					IsHat:          true,
				},
			},
		},
	})
}

// MinimalPatterns returns the built-in pattern library used when the
// configured file cannot be loaded.
func MinimalPatterns() *Library {
	return NewLibrary([]model.Pattern{
		{
			Name:           "jump",
			Description:    "Make sprite jump",
			InstructionIDs: []string{"motion_changeyby"},
			Overrides:      map[string]model.Value{"DY": model.Int(50)},
			Explanation:    "This makes your sprite jump up!",
		},
	})
}
