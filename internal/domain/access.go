package domain

// Access is the set of capabilities one user has on one trip.
// Build it per request with NewAccess; never cache it.
type Access struct {
	IsOwner bool
	// Role is empty when the user has no participant row.
	Role ParticipantRole
}

// NewAccess derives the caller's capabilities from the trip and their participant row (nil if none).
func NewAccess(trip *Trip, userID string, p *Participant) Access {
	a := Access{IsOwner: trip != nil && userID != "" && trip.OwnerID == userID}
	if p != nil && p.UserID == userID {
		a.Role = p.Role
	}
	return a
}

// CanView is true for the owner and every participant regardless of role.
func (a Access) CanView() bool {
	return a.IsOwner || a.Role != ""
}

func (a Access) CanInvite() bool {
	return a.IsOwner || a.Role == RoleOrganizer
}

// CanEditContent covers adding expenses and settling splits. Guests are read-only.
func (a Access) CanEditContent() bool {
	return a.IsOwner || a.Role == RoleOrganizer || a.Role == RoleParticipant
}

func (a Access) CanManageParticipants() bool {
	return a.IsOwner || a.Role == RoleOrganizer
}

func (a Access) CanManageExpenses() bool {
	return a.IsOwner || a.Role == RoleOrganizer
}

func (a Access) CanEditTripDetails() bool {
	return a.IsOwner || a.Role == RoleOrganizer
}

func (a Access) CanManageCoverPhoto() bool {
	return a.IsOwner
}

func (a Access) CanChangeTripStatus() bool {
	return a.IsOwner
}

func (a Access) CanChangeRoles() bool {
	return a.IsOwner
}

func (a Access) CanDeleteTrip() bool {
	return a.IsOwner
}

// Capability pairs a check on Access with the reason reported when it fails.
type Capability struct {
	allowed func(Access) bool
	denied  error
}

var (
	CapView               = Capability{Access.CanView, ErrNotTripMember}
	CapInvite             = Capability{Access.CanInvite, ErrCannotInvite}
	CapEditContent        = Capability{Access.CanEditContent, ErrGuestReadOnly}
	CapManageParticipants = Capability{Access.CanManageParticipants, ErrCannotManageParticipants}
	CapManageExpenses     = Capability{Access.CanManageExpenses, ErrCannotManageExpenses}
	CapEditTripDetails    = Capability{Access.CanEditTripDetails, ErrCannotEditTripDetails}
	CapManageCoverPhoto   = Capability{Access.CanManageCoverPhoto, ErrCannotManageCoverPhoto}
	CapChangeTripStatus   = Capability{Access.CanChangeTripStatus, ErrCannotChangeTripStatus}
	CapChangeRoles        = Capability{Access.CanChangeRoles, ErrCannotChangeRoles}
	CapDeleteTrip         = Capability{Access.CanDeleteTrip, ErrCannotDeleteTrip}
)

// Check returns nil when c is granted. Users outside the trip always get ErrNotTripMember.
func (a Access) Check(c Capability) error {
	if !a.CanView() {
		return ErrNotTripMember
	}
	if !c.allowed(a) {
		return c.denied
	}
	return nil
}
