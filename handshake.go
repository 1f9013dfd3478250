package kosmos

// HandshakeReply is the server's answer to a handshake or re-handshake. It
// is produced by the Codec (an external collaborator — see Codec in
// transport.go); the core only reads it, classifies writable/readable
// capability from IsMaster/ReadOnly, and folds Hosts/Passives into the Host
// Registry.
type HandshakeReply struct {
	// IsMaster reports whether this connection is the writable primary.
	IsMaster bool
	// ReadOnly reports whether this connection refuses writes.
	ReadOnly bool
	// Hosts lists additional known peers the server is aware of.
	Hosts []string
	// Passives lists additional known peers ineligible for default
	// selection (still folded into the Host Registry's known set).
	Passives []string
	// Extra carries any other fields the server returned. The core never
	// inspects it.
	Extra Document
}

// Capable reports whether this reply satisfies a routing request for a
// writable (or, if writable is false, merely readable) connection, given
// the cluster-wide readableSecondary setting. It implements the Router's
// scan predicate from the component design (§4.5).
func (r *HandshakeReply) Capable(writable, readableSecondary bool) bool {
	if r == nil {
		return false
	}
	unwritable := writable && r.ReadOnly
	unreadable := !readableSecondary && !r.IsMaster
	return !unwritable && !unreadable
}
