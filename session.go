package kosmos

// ClientSession is an opaque handle to server-side session state. Session
// and transaction bookkeeping are out of scope for this core (see package
// doc); ClientSession exists only so a CommandContext has something
// concrete to carry, and so the Database façade (see the cluster package)
// has something to attach from its SessionManager collaborator.
type ClientSession struct {
	ID string
}
