package cluster

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kosmosdb/kosmos"
)

// Factory is the Connection Factory from spec §4.2: it opens a transport,
// performs an initial handshake carrying client metadata, and on success
// applies the cluster settings in effect at that moment. On any failure it
// returns an error and leaves no pool entry behind.
type Factory struct {
	transport kosmos.Transport
	codec     kosmos.Codec
	meta      kosmos.ClientMetadata
	timeout   time.Duration
}

// NewFactory builds a Factory. appName is folded into the client metadata
// sent on every initial handshake.
func NewFactory(transport kosmos.Transport, codec kosmos.Codec, appName string, handshakeTimeout time.Duration) *Factory {
	return &Factory{
		transport: transport,
		codec:     codec,
		meta: kosmos.ClientMetadata{
			AppName:  appName,
			Driver:   kosmos.DriverName,
			Version:  kosmos.DriverVersion,
			Platform: "go",
		},
		timeout: handshakeTimeout,
	}
}

// Open connects to host and performs its initial handshake. The raw dial
// sub-step (not the handshake) is retried with a short bounded exponential
// backoff to absorb a transient "connection refused during a failover
// blip" — the Factory's external contract is unchanged: it still returns
// exactly one Connection or error. A handshake failure is never retried
// here; a different host is the Router's job to try (spec §4.5 step 2).
func (f *Factory) Open(ctx context.Context, host kosmos.Host, readableSecondary bool) (*kosmos.Connection, error) {
	ch, err := f.dialWithBackoff(ctx, host)
	if err != nil {
		return nil, err
	}

	hctx := ctx
	var cancel context.CancelFunc
	if f.timeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	reply, err := f.codec.ExecuteHandshake(hctx, ch, f.meta, true)
	if err != nil || reply == nil {
		ch.Close()
		if err == nil {
			err = errHandshakeReplyMissing
		}
		return nil, &HandshakeFailedError{Host: host.String(), Err: err}
	}

	return kosmos.NewConnection(ch, reply, readableSecondary), nil
}

var errHandshakeReplyMissing = clientError("handshake reply was absent")

type clientError string

func (e clientError) Error() string { return string(e) }

func (f *Factory) dialWithBackoff(ctx context.Context, host kosmos.Host) (kosmos.Channel, error) {
	var ch kosmos.Channel

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 20 * time.Millisecond
	eb.MaxInterval = 200 * time.Millisecond
	eb.MaxElapsedTime = 500 * time.Millisecond

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, 3), ctx)

	err := backoff.Retry(func() error {
		var dialErr error
		ch, dialErr = f.transport.Open(ctx, host)
		return dialErr
	}, policy)
	if err != nil {
		return nil, err
	}
	return ch, nil
}
