// Copyright (c) Semalign Authors.
// Licensed under the MIT License.

/*
Package types provides the global shared types of the semalign engine.

types is the lowest-level package and depends on no other semalign
package, so that agent, align, search, skos, and llm can all share one
type contract without circular imports.

Core types:

  - Message / Role: conversation messages with worker provenance
  - Error / ErrorCode: structured error taxonomy (routing, classification,
    collaborator failures) with Retryable and Service markers

Helpers:

  - NewUserMessage / NewAssistantMessage / NewWorkerMessage
  - NewError / NewErrorf, WithCause / WithRetryable / WithService
  - IsRetryable / GetErrorCode
*/
package types
