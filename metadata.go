package kosmos

import "github.com/vmihailenco/msgpack/v5"

// ClientMetadata is folded into the initial handshake only (see
// Codec.ExecuteHandshake's withClientMetadata argument). Re-handshakes
// issued by the Discovery Loop omit it.
type ClientMetadata struct {
	AppName  string `msgpack:"appName"`
	Driver   string `msgpack:"driver"`
	Version  string `msgpack:"version"`
	Platform string `msgpack:"platform"`
}

// Encode serializes the metadata the way a handshake body would carry it.
func (m ClientMetadata) Encode() ([]byte, error) {
	return msgpack.Marshal(m)
}

// DriverName and DriverVersion identify this package in client metadata
// sent on every initial handshake.
const (
	DriverName    = "kosmos-go"
	DriverVersion = "0.1.0"
)
