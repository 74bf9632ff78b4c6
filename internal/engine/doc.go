// Package engine drives an enrichment run: it selects the unprocessed rows of
// a table, plans them into chunks of keys, looks each chunk up through a
// lookup.Adapter on a bounded worker pool and merges every completed chunk
// back into the table on a single coordinating goroutine, persisting a full
// snapshot after each merge that changed something.
//
// A run can be interrupted at any point. Rows are marked processed only by a
// non-empty target value, so rerunning against the persisted snapshot picks up
// exactly the rows that are still empty.
package engine
