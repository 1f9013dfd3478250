// Package kosmos implements the connection-level primitives of a client
// library for a distributed document-oriented database: a Connection
// wrapping a transport Channel and its in-flight command queue, the
// one-shot Future completion slot, the HandshakeReply shape the codec
// hands back, and the Transport/Codec contracts those collaborators must
// satisfy.
//
// The cluster-coordination core itself — the Host Registry, Connection
// Pool, Connection Factory, Discovery Loop, Router, and Command
// Dispatcher — lives in the cluster subpackage, which builds on these
// primitives the way the teacher's pool package builds on its root
// connection package.
package kosmos
