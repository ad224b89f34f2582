package resolver

// Step is the next input a caller must supply.
type Step int

const (
	ChooseAction Step = iota
	ChooseSpec
	ChooseName
	ChooseFlavors
	ChooseSave
	ChooseSelection
	Done
)

func (s Step) String() string {
	switch s {
	case ChooseAction:
		return "action"
	case ChooseSpec:
		return "input"
	case ChooseName:
		return "name"
	case ChooseFlavors:
		return "types"
	case ChooseSave:
		return "save"
	case ChooseSelection:
		return "select"
	default:
		return "done"
	}
}

// Answers records what has been supplied so far. Each Has* flag marks an
// answer as given, so a deliberate "no" or empty selection counts.
type Answers struct {
	CatalogEmpty bool
	Action       Action

	Spec    string
	Name    string
	Flavors int

	HasSave      bool
	HasSelection bool
}

// NextStep returns the first unanswered step. The flow is linear:
// action, then spec, name, flavors and save for "new"; selection for "select".
func NextStep(a Answers) Step {
	action := a.Action
	if a.CatalogEmpty {
		action = ActionNew
	}
	switch action {
	case "":
		return ChooseAction
	case ActionAll:
		return Done
	case ActionSelect:
		if !a.HasSelection {
			return ChooseSelection
		}
		return Done
	}
	switch {
	case a.Spec == "":
		return ChooseSpec
	case a.Name == "":
		return ChooseName
	case a.Flavors == 0:
		return ChooseFlavors
	case !a.HasSave:
		return ChooseSave
	}
	return Done
}
