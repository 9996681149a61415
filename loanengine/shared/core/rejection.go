package core

// RejectionKind classifies why a command was refused.
type RejectionKind string

const (
	RejectionNotFound     RejectionKind = "not_found"
	RejectionConflict     RejectionKind = "conflict"
	RejectionUnauthorized RejectionKind = "unauthorized"
	RejectionInvalid      RejectionKind = "invalid"
)

// Rejection is a refused business rule. It is a value, so callers branch on Kind
// instead of inspecting errors.
type Rejection struct {
	Kind   RejectionKind `json:"kind"`
	Reason string        `json:"reason"`
}

func (r Rejection) String() string {
	return string(r.Kind) + ": " + r.Reason
}

func NotFound(reason string) Rejection {
	return Rejection{Kind: RejectionNotFound, Reason: reason}
}

func Conflict(reason string) Rejection {
	return Rejection{Kind: RejectionConflict, Reason: reason}
}

func Unauthorized(reason string) Rejection {
	return Rejection{Kind: RejectionUnauthorized, Reason: reason}
}

func Invalid(reason string) Rejection {
	return Rejection{Kind: RejectionInvalid, Reason: reason}
}
