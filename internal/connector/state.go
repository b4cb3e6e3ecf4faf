package connector

// State is the provider-neutral lifecycle state of a server
type State string

const (
	StateRunning    State = "running"
	StateRebooting  State = "rebooting"
	StateTerminated State = "terminated"
	StatePending    State = "pending"
	StateStopped    State = "stopped"
	StateStopping   State = "stopping"
	StateStarting   State = "starting"
	StateUnknown    State = "unknown"
)

func (s State) String() string {
	return string(s)
}

// Details is a point-in-time projection of a server
type Details struct {
	ID             string
	Name           string
	State          State
	PrivateIPs     []string
	PublicIPs      []string
	SecurityGroups []string
	KeyPair        string
	InstanceType   string
}
