/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package expander

import "fmt"

// GenerationKind classifies generation-service failures so quota problems
// can be reported distinctly from plain transport errors.
type GenerationKind string

const (
	KindTransport GenerationKind = "transport"
	KindAuth      GenerationKind = "auth"
	KindQuota     GenerationKind = "quota"
	KindTimeout   GenerationKind = "timeout"
	KindEmpty     GenerationKind = "empty_response"
)

// ErrGeneration represents a failed call to the generation service.
// It is recoverable per batch and feeds the consecutive-failure budget.
type ErrGeneration struct {
	Kind GenerationKind
	Msg  string
	Err  error
}

func (e *ErrGeneration) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation error (%s): %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("generation error (%s): %s", e.Kind, e.Msg)
}

func (e *ErrGeneration) Unwrap() error {
	return e.Err
}

// ErrCancelled represents a run cancelled between batches.
type ErrCancelled struct {
	Msg string
	Err error
}

func (e *ErrCancelled) Error() string {
	return fmt.Sprintf("operation cancelled: %s: %v", e.Msg, e.Err)
}

func (e *ErrCancelled) Unwrap() error {
	return e.Err
}

// ErrPartial signals that the run aborted with accepted progress already
// written out. Callers use it to report partial success rather than a
// hard failure.
type ErrPartial struct {
	Reason string
	Final  int
	Target int
}

func (e *ErrPartial) Error() string {
	return fmt.Sprintf("expansion aborted: %s (reached %d of %d rows)", e.Reason, e.Final, e.Target)
}
