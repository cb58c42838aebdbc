// Package ring implements the shared-memory ring buffer that connects
// generator processes to the supervisor.
//
// The buffer is a named shared-memory block holding eight candidate-solution
// slots plus the run's shared control flags (stop, acyclic found, best size
// seen). Three named semaphores guard it: a binary one serializing producers,
// and two counting ones tracking free and occupied slots. Any number of
// generator processes publish candidates; exactly one supervisor drains them.
//
// Slot occupancy markers, not shared cursors, are the source of truth for
// which slots hold data: each process keeps its own cursor and scans forward
// from it until the marker tells it where to write or read. This tolerates
// the cursor drift caused by independent producers without a shared index.
//
// The supervisor owns every named object. It creates them before any
// generator attaches and is the only process that removes them; generators
// attach by session name and detach on exit.
package ring
