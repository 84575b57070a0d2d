package app

import "github.com/Parth0603/backendServer/internal/domain"

// HostLossAction says what the reconciler does to a room whose host
// connection died.
type HostLossAction int

const (
	// DeleteRoom tears the room down and tells the remaining members.
	DeleteRoom HostLossAction = iota
	// MarkInactive keeps the room and flips hostActive off, silently.
	MarkInactive
	// DetachHost only clears the host connection reference.
	DetachHost
)

// HostLossPolicy is the per-kind decision table. Gaming rooms die with
// their host, teaching rooms wait for the teacher to come back, event
// rooms keep running on retained host metadata.
func HostLossPolicy(kind domain.RoomKind) HostLossAction {
	switch kind {
	case domain.KindGaming:
		return DeleteRoom
	case domain.KindTeaching:
		return MarkInactive
	default:
		return DetachHost
	}
}
