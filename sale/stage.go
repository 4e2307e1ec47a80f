package sale

import "fmt"

// Stage is the lifecycle phase of the current sale event.
type Stage uint8

const (
	StageSetup Stage = iota
	StageOpen
	StageClose
	StageWithdraw
)

var stageNames = [...]string{
	StageSetup:    "SETUP",
	StageOpen:     "OPEN",
	StageClose:    "CLOSE",
	StageWithdraw: "WITHDRAW",
}

// String returns the upper-case stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Valid reports whether s is one of the four lifecycle stages.
func (s Stage) Valid() bool {
	return int(s) < len(stageNames)
}

// ParseStage returns the stage with the given name.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("sale: unknown stage %q", name)
}

// Next returns the stage that the lifecycle-advance operation from s leads
// to. Every stage has exactly one successor; WITHDRAW wraps to SETUP.
func (s Stage) Next() Stage {
	switch s {
	case StageSetup:
		return StageOpen
	case StageOpen:
		return StageClose
	case StageClose:
		return StageWithdraw
	default:
		return StageSetup
	}
}

// AllowsEventSelection reports whether the current event may be changed in s.
func (s Stage) AllowsEventSelection() bool {
	return s == StageSetup || s == StageOpen
}
