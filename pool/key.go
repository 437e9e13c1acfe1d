package pool

import "fmt"

// Version distinguishes exclusive, single-use connections from shareable,
// multiplexed ones. An Http1 connection backs exactly one checkout at a
// time; an Http2 connection can back arbitrarily many concurrently.
type Version int

const (
	// VersionH1 marks an exclusive-use connection (checked out by one
	// caller at a time; returned to idle before anyone else may reuse it).
	VersionH1 Version = iota
	// VersionH2 marks a shareable, multiplexed connection.
	VersionH2
)

func (v Version) String() string {
	switch v {
	case VersionH1:
		return "h1"
	case VersionH2:
		return "h2"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// Key identifies a bucket of connections in the pool: an opaque host+port
// (or equivalent authority) string, plus the protocol version that decides
// exclusive versus shared reuse.
type Key struct {
	Origin string
	Ver    Version
}

func (k Key) String() string {
	return k.Origin + "/" + k.Ver.String()
}
