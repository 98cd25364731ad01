package bollywood

// rootProtocolType and publicRootProtocolType name the two guardian
// actors every Stage bootstraps, mirroring spec §4.7's PrivateRoot/
// PublicRoot pair: PrivateRoot supervises registered named supervisors
// and PublicRoot, while PublicRoot is the default parent and supervisor
// for top-level user actors. Both run the same built-in supervisorActor
// body with an unbounded, always-restart strategy — "let it crash" all
// the way to the top of the tree.
const (
	privateRootType = "bollywood.privateRoot"
	publicRootType  = "bollywood.publicRoot"
)

func newGuardianProtocol(typeName string) Protocol {
	return NewProtocol(typeName, func(def Definition) Actor {
		return newSupervisorActor(unboundedRestartStrategy(), AlwaysRestart)
	})
}
