package ingest

// Mode is the process-wide deployment mode (spec §6): it governs whether a
// node may auto-create streams and which snapshot files a query node reads.
type Mode string

const (
	// ModeAll runs both ingestion and query responsibilities on one node.
	ModeAll Mode = "all"

	// ModeQuery merges every per-writer snapshot when scanning a stream.
	// Like ModeAll, it auto-creates a missing stream on ingest.
	ModeQuery Mode = "query"

	// ModeIngest accepts writes only. It may not auto-create a stream from
	// thin air, but will hydrate the registry from the object store if the
	// stream already exists there.
	ModeIngest Mode = "ingest"
)
