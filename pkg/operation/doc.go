/*
Package operation runs the scan-and-transfer cycles of batchcopier.

	+-------------+      +-----------+      +------------+
	|  Scheduler  +----->|  Runner   +----->|  Grouper   |
	| fixed delay |      |  (cycle)  |      | (batches)  |
	+-------------+      +-----+-----+      +------------+
	                           |
	                     +-----+------+
	                     | Transferor |
	                     | copy, move |
	                     +------------+

🎯 Purpose:
- Find marker files announcing that a batch is complete
- Transfer each batch: companion payloads first, the marker last
- Count executions, failures and processed files

🔄 Flow of one cycle:
 1. Increment the executions counter
 2. List the markers in the input directory (a single snapshot)
 3. For each marker resolve its transfer unit and transfer every file
 4. A failing batch increments the failure counter and is left for the next cycle
 5. Report the duration of the cycle

⚡ Guarantees:
- The marker is always the last file of its batch to leave the input
  directory, so a crash mid-batch leaves the marker behind and the whole
  batch is retried
- The backup copy exists before the source file is removed
- A failure never escapes a cycle and a cycle never stops the scheduler

🔍 Example:

	runner, err := operation.New(operation.Options{
		InputDir:   "/data/in",
		BackupDir:  "/data/backup",
		TargetDir:  "/data/out",
		Marker:     marker,
		Grouper:    batch.NewGrouper(nil),
		Transferor: transfer.New(),
		Counters:   metrics.NewCounters(),
	})
	report := runner.RunCycle(ctx)
*/
package operation
