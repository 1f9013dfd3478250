package kosmos

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// LogEvent is a structured, leveled log event. Grounded directly on the
// teacher's LogEvent (connection_events.go); the concrete event set below
// replaces Tarantool wire-level events with the cluster core's own.
type LogEvent interface {
	EventName() string
	Message() string
	LogLevel() slog.Level
	LogAttrs() []slog.Attr
}

type baseEvent struct {
	Host string
	When time.Time
}

func newBaseEvent(host string) baseEvent {
	return baseEvent{Host: host, When: time.Now()}
}

func (e baseEvent) baseAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("component", "kosmos.cluster"),
		slog.Time("event_time", e.When),
	}
	if e.Host != "" {
		attrs = append(attrs, slog.String("host", e.Host))
	}
	return attrs
}

// HandshakeFailedEvent reports a failed handshake or re-handshake against
// a host.
type HandshakeFailedEvent struct {
	baseEvent
	Error error
}

func NewHandshakeFailedEvent(host string, err error) HandshakeFailedEvent {
	return HandshakeFailedEvent{baseEvent: newBaseEvent(host), Error: err}
}

func (e HandshakeFailedEvent) EventName() string    { return "handshake_failed" }
func (e HandshakeFailedEvent) Message() string      { return fmt.Sprintf("handshake failed against %s", e.Host) }
func (e HandshakeFailedEvent) LogLevel() slog.Level { return slog.LevelWarn }
func (e HandshakeFailedEvent) LogAttrs() []slog.Attr {
	attrs := e.baseAttrs()
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	return attrs
}

// HostTimedOutEvent reports that a host's connect attempt failed and it
// has been moved to the Host Registry's timed-out set.
type HostTimedOutEvent struct {
	baseEvent
	Error error
}

func NewHostTimedOutEvent(host string, err error) HostTimedOutEvent {
	return HostTimedOutEvent{baseEvent: newBaseEvent(host), Error: err}
}

func (e HostTimedOutEvent) EventName() string    { return "host_timed_out" }
func (e HostTimedOutEvent) Message() string      { return fmt.Sprintf("connect to %s failed, marking timed out", e.Host) }
func (e HostTimedOutEvent) LogLevel() slog.Level { return slog.LevelWarn }
func (e HostTimedOutEvent) LogAttrs() []slog.Attr {
	attrs := e.baseAttrs()
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	return attrs
}

// HostDiscoveredEvent reports a new host folded into the Host Registry's
// known set from a handshake reply's hosts/passives lists, or a host for
// which a pooled connection has just been opened.
type HostDiscoveredEvent struct {
	baseEvent
}

func NewHostDiscoveredEvent(host string) HostDiscoveredEvent {
	return HostDiscoveredEvent{baseEvent: newBaseEvent(host)}
}

func (e HostDiscoveredEvent) EventName() string    { return "host_discovered" }
func (e HostDiscoveredEvent) Message() string      { return fmt.Sprintf("discovered new host %s", e.Host) }
func (e HostDiscoveredEvent) LogLevel() slog.Level { return slog.LevelInfo }
func (e HostDiscoveredEvent) LogAttrs() []slog.Attr {
	return e.baseAttrs()
}

// ConnectionEvictedEvent reports a pooled connection's removal, whether
// from a transport close or a dead entry found during a Router scan.
type ConnectionEvictedEvent struct {
	baseEvent
	QueuedCommands int
}

func NewConnectionEvictedEvent(host string, queued int) ConnectionEvictedEvent {
	return ConnectionEvictedEvent{baseEvent: newBaseEvent(host), QueuedCommands: queued}
}

func (e ConnectionEvictedEvent) EventName() string { return "connection_evicted" }
func (e ConnectionEvictedEvent) Message() string {
	return fmt.Sprintf("connection to %s evicted, %d command(s) in flight", e.Host, e.QueuedCommands)
}
func (e ConnectionEvictedEvent) LogLevel() slog.Level { return slog.LevelWarn }
func (e ConnectionEvictedEvent) LogAttrs() []slog.Attr {
	attrs := e.baseAttrs()
	attrs = append(attrs, slog.Int("queued_commands", e.QueuedCommands))
	return attrs
}

// CommandRetriedEvent reports a queued command resubmitted onto a fresh
// connection after its original connection closed mid-flight.
type CommandRetriedEvent struct {
	baseEvent
	RequestID uuid.UUID
}

func NewCommandRetriedEvent(requestID uuid.UUID) CommandRetriedEvent {
	return CommandRetriedEvent{RequestID: requestID}
}

func (e CommandRetriedEvent) EventName() string { return "command_retried" }
func (e CommandRetriedEvent) Message() string {
	return fmt.Sprintf("retrying command %s on a fresh connection", e.RequestID)
}
func (e CommandRetriedEvent) LogLevel() slog.Level { return slog.LevelInfo }
func (e CommandRetriedEvent) LogAttrs() []slog.Attr {
	attrs := e.baseAttrs()
	attrs = append(attrs, slog.String("request_id", e.RequestID.String()))
	return attrs
}

// DiscoverySweepEvent reports the outcome of a discovery sweep.
type DiscoverySweepEvent struct {
	baseEvent
	Rehandshaked int
	Failed       int
}

func NewDiscoverySweepEvent(rehandshaked, failed int) DiscoverySweepEvent {
	return DiscoverySweepEvent{Rehandshaked: rehandshaked, Failed: failed}
}

func (e DiscoverySweepEvent) EventName() string { return "discovery_sweep" }
func (e DiscoverySweepEvent) Message() string {
	return fmt.Sprintf("discovery sweep: %d re-handshaked, %d failed", e.Rehandshaked, e.Failed)
}
func (e DiscoverySweepEvent) LogLevel() slog.Level { return slog.LevelDebug }
func (e DiscoverySweepEvent) LogAttrs() []slog.Attr {
	attrs := e.baseAttrs()
	attrs = append(attrs, slog.Int("rehandshaked", e.Rehandshaked), slog.Int("failed", e.Failed))
	return attrs
}

// UnexpectedResultIDEvent reports a reply whose request id did not match
// the head of the in-flight queue it was popped against. The core still
// completes the head (the wire protocol guarantees FIFO replies per
// connection; see spec §5), but a mismatch means something upstream is
// violating that guarantee and is worth surfacing.
type UnexpectedResultIDEvent struct {
	baseEvent
	Expected uuid.UUID
	Got      uuid.UUID
}

func NewUnexpectedResultIDEvent(host string, expected, got uuid.UUID) UnexpectedResultIDEvent {
	return UnexpectedResultIDEvent{baseEvent: newBaseEvent(host), Expected: expected, Got: got}
}

func (e UnexpectedResultIDEvent) EventName() string { return "unexpected_result_id" }
func (e UnexpectedResultIDEvent) Message() string {
	return fmt.Sprintf("reply request id %s did not match expected %s", e.Got, e.Expected)
}
func (e UnexpectedResultIDEvent) LogLevel() slog.Level { return slog.LevelWarn }
func (e UnexpectedResultIDEvent) LogAttrs() []slog.Attr {
	attrs := e.baseAttrs()
	attrs = append(attrs,
		slog.String("expected_request_id", e.Expected.String()),
		slog.String("got_request_id", e.Got.String()),
	)
	return attrs
}
