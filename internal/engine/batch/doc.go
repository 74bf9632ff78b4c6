// Package batch splits work into fixed-size chunks and runs them on a bounded
// pool of workers.
//
// Plan partitions items into consecutive chunks. Pool runs one task per chunk
// with at most Workers tasks in flight and delivers each Completion as soon as
// its task returns, so consumers see completion order, not submission order.
// A failing or panicking task only affects its own Completion.
//
// Progress tracks how many chunks and items have completed and derives rates
// and an ETA for operator-facing output.
package batch
