package types

// Trigger records what started a sync run
type Trigger string

const (
	TriggerManual   Trigger = "manual"
	TriggerAuto     Trigger = "auto"
	TriggerSchedule Trigger = "schedule"
)

// IsValid checks if the trigger is valid
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerManual, TriggerAuto, TriggerSchedule:
		return true
	default:
		return false
	}
}

func (t Trigger) String() string {
	return string(t)
}
