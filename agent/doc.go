// Package agent implements the supervisor-routed orchestration core:
// a fixed worker roster, an oracle-driven routing supervisor with
// validated decisions, and a step-budgeted loop that alternates routing
// and worker invocations over one shared conversation state. Workers
// may nest whole sub-loops (TeamWorker), keeping the same budget
// discipline at every level.
package agent
