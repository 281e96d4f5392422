package domain

// ProcessStatus is the readable scheduler state of the host process.
type ProcessStatus string

const (
	ProcessRunning  ProcessStatus = "RUNNING"
	ProcessSleeping ProcessStatus = "SLEEP"
	ProcessStopped  ProcessStatus = "STOP"
	ProcessIdle     ProcessStatus = "IDLE"
	ProcessZombie   ProcessStatus = "ZOMBIE"
	ProcessWaiting  ProcessStatus = "WAIT"
	ProcessLocked   ProcessStatus = "LOCK"
	ProcessUnknown  ProcessStatus = "UNKNOWN"
)

// ToProcessStatus maps the one letter state reported by the OS.
func ToProcessStatus(status string) ProcessStatus {
	switch status {
	case "R":
		return ProcessRunning
	case "S":
		return ProcessSleeping
	case "T":
		return ProcessStopped
	case "I":
		return ProcessIdle
	case "Z":
		return ProcessZombie
	case "W":
		return ProcessWaiting
	case "L":
		return ProcessLocked
	default:
		return ProcessUnknown
	}
}
