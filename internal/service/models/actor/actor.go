package actor

// Actor is the display name of the authenticated admin performing a mutation.
// The zero value means no identity could be resolved.
type Actor string

// System is used for mutations that are not triggered by an admin.
const System Actor = "system"

func (a Actor) String() string {
	return string(a)
}

// Known reports whether an identity was resolved.
func (a Actor) Known() bool {
	return a != ""
}
