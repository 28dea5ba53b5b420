package ingest

// opKind is the canonical-table effect of one row.
type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opTouch
)

// canonicalOp is one classified write against a canonical table.
type canonicalOp struct {
	Kind  opKind
	Entry CanonicalEntry
}

// classifyEntries decides insert/update/touch for each entry by comparing the
// canonicalized JSON of existing stored data against the incoming data.
// existing maps uniqueKey to the stored row's canonical JSON; it is mutated so
// that a key repeated within one batch compares against the value this batch
// already wrote.
func classifyEntries(existing map[string]string, entries []CanonicalEntry) ([]canonicalOp, Stats) {
	ops := make([]canonicalOp, 0, len(entries))
	var stats Stats
	for _, entry := range entries {
		incoming := string(entry.Data.CanonicalJSON())
		stored, ok := existing[entry.UniqueKey]
		switch {
		case !ok:
			ops = append(ops, canonicalOp{Kind: opInsert, Entry: entry})
			stats.Inserted++
		case stored != incoming:
			ops = append(ops, canonicalOp{Kind: opUpdate, Entry: entry})
			stats.Updated++
		default:
			ops = append(ops, canonicalOp{Kind: opTouch, Entry: entry})
			stats.Unchanged++
		}
		existing[entry.UniqueKey] = incoming
	}
	return ops, stats
}
