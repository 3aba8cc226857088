package corpus

// Assemble assigns dense 1-based ids over the surviving records, in their
// current order. Called after deduplication, so the final output order is
// the dedup recency order, not arrival order.
func Assemble(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		out[i].ID = i + 1
	}
	return out
}
