package services

// Actor identifies who a mutating call is attributed to. It is threaded
// explicitly through every Data Service call instead of living in ambient
// process state, so concurrent requests can never stamp each other's
// identity.
type Actor struct {
	ID    string
	Nome  string
	Email string
}

// SistemaActor is the identity stamped when no authenticated user is
// attached to a call.
func SistemaActor() Actor {
	return Actor{Nome: "Sistema"}
}

// IsZero reports whether no identity was resolved at all.
func (a Actor) IsZero() bool {
	return a.ID == "" && a.Nome == "" && a.Email == ""
}
