// Package lookup is the boundary to the external knowledge-lookup service.
//
// An Adapter turns an ordered batch of entity names into Records. The upstream
// service answers in free text that is expected to embed a JSON array of
// objects; ParseRecords extracts that array on a best-effort basis. Callers
// match records back to rows by value, never by position, and treat any error
// as "no results for this batch".
package lookup
