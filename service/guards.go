package service

// StaticAccessGuard answers the administrator check from a fixed identity set
// loaded at startup.
type StaticAccessGuard struct {
	admins map[string]struct{}
}

func NewStaticAccessGuard(identities []string) *StaticAccessGuard {
	admins := make(map[string]struct{}, len(identities))

	for _, identity := range identities {
		admins[identity] = struct{}{}
	}

	return &StaticAccessGuard{admins: admins}
}

func (g *StaticAccessGuard) IsAdministrator(identity string) bool {
	_, ok := g.admins[identity]
	return ok
}
