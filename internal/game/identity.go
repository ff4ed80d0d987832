package game

// Identity is the token that says which party owns a planet or launched a
// fleet. Two owners are the same party only when their *Identity pointers are
// equal; the nickname is for display.
type Identity struct {
	nickname string
}

func NewIdentity(nickname string) *Identity {
	return &Identity{nickname: nickname}
}

func (id *Identity) Nickname() string { return id.nickname }

// Detach returns a new Identity carrying the same nickname. Planets of a
// departed player are handed the detached copy so a later player with the same
// name never inherits them.
func (id *Identity) Detach() *Identity {
	return &Identity{nickname: id.nickname}
}
