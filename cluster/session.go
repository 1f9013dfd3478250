package cluster

import "github.com/kosmosdb/kosmos"

// SessionManager makes implicit client sessions for commands that aren't
// explicitly given one. It is an out-of-scope collaborator (spec §6); the
// core only calls it from Database.Send.
type SessionManager interface {
	MakeImplicitSession(c *Cluster) (kosmos.ClientSession, error)
}

// Database is the thin factory spec §6 calls operator[database: string],
// grounded on the teacher's ConnectorAdapter (pool/connector.go): it
// forwards every call to the underlying Cluster with one fixed parameter
// baked in — there, a Mode; here, a database name plus an implicit
// session.
type Database struct {
	cluster *Cluster
	name    string
}

// Name returns the database name this façade was built for.
func (d *Database) Name() string {
	return d.name
}

// Send dispatches command through the owning Cluster, attaching an
// implicit session from the configured SessionManager when one is
// configured; otherwise the command is sent without a session.
func (d *Database) Send(command kosmos.Document) *kosmos.Future {
	var session *kosmos.ClientSession
	if d.cluster.settings.Sessions != nil {
		s, err := d.cluster.settings.Sessions.MakeImplicitSession(d.cluster)
		if err != nil {
			return kosmos.NewFailedFuture(err)
		}
		session = &s
	}
	return d.cluster.sendWithSession(command, true, session)
}
