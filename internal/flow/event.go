package flow

// EventKind tells free text apart from a button press and a command.
type EventKind string

const (
	EventText    EventKind = "text"
	EventOption  EventKind = "option"
	EventCommand EventKind = "command"
)

// Commands understood by the machine. Payload of an EventCommand carries the
// name without the leading slash.
const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandCancel    = "cancel"
	CommandAdmin     = "admin"
	CommandAdminHelp = "adminhelp"
	CommandStats     = "stats"
	CommandUsers     = "users"
)

// Event is one inbound update already stripped of transport details.
type Event struct {
	UserID      int64
	DisplayName string
	Kind        EventKind
	Payload     string
}

// Option is one tappable choice of a prompt.
type Option struct {
	Label string
	Value string
}
