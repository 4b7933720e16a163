package flow

// Trip types offered by the order conversation.
const (
	TripPerson = "person"
	TripCargo  = "cargo"
)

// CommentNone is stored when the user skips the comment.
const CommentNone = "Yo‘q"

// Draft accumulates the order while the conversation runs. A field is set only
// after its step validated the input.
type Draft struct {
	Direction string `json:"direction,omitempty"`
	Date      string `json:"date,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TripType  string `json:"trip_type,omitempty"`
	Car       string `json:"car,omitempty"`
	Address   string `json:"address,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// Complete reports whether all seven fields are filled.
func (d Draft) Complete() bool {
	return d.Direction != "" && d.Date != "" && d.Phone != "" && d.TripType != "" &&
		d.Car != "" && d.Address != "" && d.Comment != ""
}

// Session is the snapshot persisted between updates of one user.
type Session struct {
	UserID int64 `json:"user_id"`
	State  State `json:"state"`
	Mode   Mode  `json:"mode"`
	Draft  Draft `json:"draft"`
}

// IdleSession is what an absent snapshot stands for.
func IdleSession(userID int64) Session {
	return Session{UserID: userID, State: StateIdle, Mode: ModeOrder}
}

func (s Session) idle() bool {
	return s.State == "" || s.State == StateIdle
}
