// Package flow implements the per-user order conversation and the operator's
// catalog conversation as an explicit state machine.
package flow

// State identifies a step of a conversation.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"

	StateAwaitingDirection State = "awaiting_direction"
	StateAwaitingDate      State = "awaiting_date"
	StateAwaitingPhone     State = "awaiting_phone"
	StateAwaitingTripType  State = "awaiting_trip_type"
	StateAwaitingCar       State = "awaiting_car"
	StateAwaitingAddress   State = "awaiting_address"
	StateAwaitingComment   State = "awaiting_comment"
	StateAwaitingConfirm   State = "awaiting_confirm"

	// StateAdminMenu is the hub every admin leaf returns to.
	StateAdminMenu              State = "admin_menu"
	StateAwaitingNewVehicle     State = "awaiting_new_vehicle"
	StateAwaitingVehicleRemoval State = "awaiting_vehicle_removal"
	StateAwaitingNewRoute       State = "awaiting_new_route"
	StateAwaitingRouteRemoval   State = "awaiting_route_removal"
)

// OrderPath lists the order states in the only sequence a valid
// conversation visits them.
var OrderPath = []State{
	StateAwaitingDirection,
	StateAwaitingDate,
	StateAwaitingPhone,
	StateAwaitingTripType,
	StateAwaitingCar,
	StateAwaitingAddress,
	StateAwaitingComment,
	StateAwaitingConfirm,
}

// Mode selects which sub-machine owns a session.
type Mode string

const (
	ModeOrder Mode = "order"
	ModeAdmin Mode = "admin"
)
