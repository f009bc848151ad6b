// Package align implements the taxonomy alignment pipeline: candidate
// retrieval from a search index, relation classification through an
// oracle, and construction of alignment records with run-scoped cell
// identifiers.
package align
