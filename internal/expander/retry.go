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

import (
	"context"
	"math"
	"time"
)

// RetryOptions configures the backoff applied between failed batches.
type RetryOptions struct {
	InitialBackoff    time.Duration // Backoff after the first failure
	MaxBackoff        time.Duration // Maximum backoff duration
	BackoffMultiplier float64       // Multiplier for exponential backoff
}

// DefaultRetryOptions provides sensible default backoff settings.
var DefaultRetryOptions = RetryOptions{
	InitialBackoff:    500 * time.Millisecond,
	MaxBackoff:        10 * time.Second,
	BackoffMultiplier: 2.0,
}

// backoffFor returns the wait before the next batch given the number of
// consecutive failures so far (attempt >= 1).
func (o RetryOptions) backoffFor(attempt int) time.Duration {
	backoff := time.Duration(float64(o.InitialBackoff) * math.Pow(o.BackoffMultiplier, float64(attempt-1)))
	if backoff > o.MaxBackoff {
		backoff = o.MaxBackoff
	}
	return backoff
}

// sleepBackoff waits out the backoff, returning early if the context is
// cancelled.
func sleepBackoff(ctx context.Context, opts RetryOptions, attempt int) error {
	timer := time.NewTimer(opts.backoffFor(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &ErrCancelled{Msg: "run cancelled during backoff", Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}
