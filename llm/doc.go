// Copyright (c) Semalign Authors.
// Licensed under the MIT License.

/*
Package llm defines the reasoning-oracle contract.

The Oracle interface is the single surface through which the supervisor,
the built-in chat workers, and the relation classifier reach a remote
language model. Provider implementations live under providers/; this
package holds only the request/response types, response helpers, and
token counting for history budgeting.
*/
package llm
