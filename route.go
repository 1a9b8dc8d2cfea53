package relayfs

// Op identifies one provider operation for routing purposes.
type Op int

const (
	OpRead Op = iota
	OpWrite
	OpDelete
	OpCreateDir
	OpDeleteDir
	OpList
	OpStat
	OpAccess
	OpSetTimes
	OpSymlink
	OpReadlink
	OpLink
	OpHidden
	OpChecksum
	OpCopy
	OpMove
	OpSameFile
)

var opNames = map[Op]string{
	OpRead:      "read",
	OpWrite:     "write",
	OpDelete:    "delete",
	OpCreateDir: "createdir",
	OpDeleteDir: "deletedir",
	OpList:      "list",
	OpStat:      "stat",
	OpAccess:    "access",
	OpSetTimes:  "settimes",
	OpSymlink:   "symlink",
	OpReadlink:  "readlink",
	OpLink:      "link",
	OpHidden:    "hidden",
	OpChecksum:  "checksum",
	OpCopy:      "copy",
	OpMove:      "move",
	OpSameFile:  "samefile",
}

// String returns the operation name used in PathError.Op and log fields.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// Route names the backend an operation is dispatched to.
type Route int

const (
	// RouteRemote delegates to the remote backend on the translated
	// system-relative path.
	RouteRemote Route = iota
	// RouteLocal delegates to the local backend on the mount-form path.
	// Used both for host-view concepts (hidden files) and as the explicit
	// degradation policy for operations the remote backend lacks (hard
	// links): rather than failing, the provider hands the untranslated path
	// to the host, which reaches the remote tree through the mount prefix.
	RouteLocal
	// RoutePair classifies a (source, target) pair per call; see the
	// copy/move classification in provider.go.
	RoutePair
)

// routes is the static capability-to-backend table consulted by the
// provider's dispatch.
var routes = map[Op]Route{
	OpRead:      RouteRemote,
	OpWrite:     RouteRemote,
	OpDelete:    RouteRemote,
	OpCreateDir: RouteRemote,
	OpDeleteDir: RouteRemote,
	OpList:      RouteRemote,
	OpStat:      RouteRemote,
	OpAccess:    RouteRemote,
	OpSetTimes:  RouteRemote,
	OpSymlink:   RouteRemote,
	OpReadlink:  RouteRemote,
	OpChecksum:  RouteRemote,

	// The remote backend has no hard-link operation.
	OpLink: RouteLocal,
	// Hidden-ness is a host-view convention with no remote representation.
	OpHidden: RouteLocal,

	OpCopy:     RoutePair,
	OpMove:     RoutePair,
	OpSameFile: RoutePair,
}

// RouteFor returns the backend route for op.
func RouteFor(op Op) Route {
	return routes[op]
}
