// Package notify raises desktop notifications for playback events.
package notify

// Urgency is the freedesktop notification priority.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Action is a clickable button on a notification. Key comes back through
// the action callback when the user activates it.
type Action struct {
	Key   string
	Label string
}

// Notification describes a single notification. ReplacesID zero posts a
// new popup; non-zero updates an existing one in place, which is how
// track changes reuse a single popup instead of stacking.
type Notification struct {
	Title      string
	Body       string
	Icon       string
	Timeout    int32 // ms, -1 server default, 0 never expire
	ReplacesID uint32
	Urgency    Urgency
	Actions    []Action
}

// actionList flattens the actions into the key/label pair list the
// freedesktop Notify call takes.
func (n Notification) actionList() []string {
	if len(n.Actions) == 0 {
		return []string{}
	}
	out := make([]string, 0, 2*len(n.Actions))
	for _, a := range n.Actions {
		out = append(out, a.Key, a.Label)
	}
	return out
}

// Notifier posts desktop notifications.
type Notifier interface {
	// Notify posts a notification and returns its server-assigned id.
	// Returns 0 and nil error when notifications are unavailable.
	Notify(n Notification) (uint32, error)
	// Close dismisses a notification by id.
	Close(id uint32) error
}
