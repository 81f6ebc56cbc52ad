// Package command implements the generic command-dispatch layer: a loosely
// typed request envelope routed to a closed set of domain operations, with
// defensive parameter coercion and a uniform result shape.
package command

import "fmt"

// Envelope is one incoming command. Domain and Action select the operation;
// Parameters carries the operation's loosely typed arguments.
type Envelope struct {
	Domain     string `json:"domain"`
	Action     string `json:"action"`
	Parameters Params `json:"parameters"`
	ActorID    *int64 `json:"actorId,omitempty"`
}

// Result is the uniform response for every command. Exactly one of the
// success and error branches is populated.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a success result.
func OK(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Errorf builds a failure result.
func Errorf(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Domain is one of the closed set of command categories.
type Domain string

const (
	DomainUser         Domain = "user"
	DomainSighting     Domain = "sighting"
	DomainNotification Domain = "notification"
	DomainLeaderboard  Domain = "leaderboard"
	DomainProfile      Domain = "profile"
)

// Action names an operation within a domain. Each domain accepts its own
// closed subset; the router rejects everything else.
type Action string

const (
	ActionGet         Action = "get"
	ActionGetAll      Action = "getall"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionMarkRead    Action = "markread"
	ActionGetTop      Action = "gettop"
	ActionGetUserRank Action = "getuserrank"
)
