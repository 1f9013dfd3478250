package kosmos

import "github.com/vmihailenco/msgpack/v5"

// Document is the opaque payload shape the core passes to and from the
// wire-protocol codec. The codec's actual framing is out of scope for this
// package (see package doc); Document only needs to be something concrete
// this package itself can build and, for client metadata, encode.
type Document map[string]interface{}

// Encode serializes a Document with the same msgpack codec the wire
// protocol uses. Client metadata is not encoded through it: ClientMetadata
// has its own Encode method.
func (d Document) Encode() ([]byte, error) {
	return msgpack.Marshal(map[string]interface{}(d))
}
