package cluster

import (
	"crypto/tls"
	"time"

	"github.com/kosmosdb/kosmos"
)

// DefaultHeartbeatFrequency and MinHeartbeatFrequency implement spec §4.6's
// clamp: "default 10 seconds; minimum-clamped at 500 ms — any attempt to
// set it lower is silently raised."
const (
	DefaultHeartbeatFrequency = 10 * time.Second
	MinHeartbeatFrequency     = 500 * time.Millisecond
)

// Credentials carries a username/password pair. The core never inspects
// them and does not pass them to the Codec or the Transport; they are only
// held in ConnectionSettings.
type Credentials struct {
	Username string
	Password string
}

// ConnectionSettings configures a Cluster. It is immutable after Connect
// (spec §6); mutable knobs (HeartbeatFrequency, ReadableSecondary) are
// exposed as Cluster methods instead, the way the teacher separates
// construction-time Opts from the ConnectionPool's own mutators.
type ConnectionSettings struct {
	// Hosts is the seed host list, "address:port" strings. Must be
	// non-empty: Connect fails with ErrNoHostSpecified otherwise.
	Hosts []string
	// Credentials are stored here only; no handshake receives them.
	Credentials Credentials
	// TLS holds a TLS configuration. The handshake/TLS exchange itself is
	// the Codec/Transport collaborators' job, and the core does not pass
	// this value to either of them: Transport.Open receives only the host
	// (see DESIGN.md for why this is stdlib *tls.Config rather than a
	// third-party TLS binding).
	TLS *tls.Config
	// AppName is folded into the client metadata sent on the initial
	// handshake only (spec §4.2).
	AppName string
	// HeartbeatFrequency is the Discovery Loop's tick interval. Zero
	// defaults to DefaultHeartbeatFrequency; anything below
	// MinHeartbeatFrequency is silently raised to it.
	HeartbeatFrequency time.Duration
	// ReadableSecondary is the initial value of the cluster-wide flag
	// that lets writable=false routing requests match a secondary.
	ReadableSecondary bool
	// Logger receives structured LogEvents. Defaults to a SlogLogger
	// wrapping slog.Default() if nil.
	Logger kosmos.Logger
	// Transport opens Channels to hosts. Required.
	Transport kosmos.Transport
	// Codec executes handshakes against open Channels. Required.
	Codec kosmos.Codec
	// Sessions makes implicit ClientSessions for the Database façade.
	// Optional; Database.Send works without one.
	Sessions SessionManager
	// HandshakeTimeout bounds a single handshake attempt (initial or
	// re-handshake). Zero means no timeout.
	HandshakeTimeout time.Duration
}

func clampHeartbeat(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultHeartbeatFrequency
	}
	if d < MinHeartbeatFrequency {
		return MinHeartbeatFrequency
	}
	return d
}
