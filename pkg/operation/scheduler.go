// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Defaults for Scheduler.
const (
	DefaultInitialDelay = 10 * time.Second
	DefaultInterval     = 5 * time.Second
)

// ⏱️ Scheduler calls a cycle after an initial delay and then again a fixed
// delay after each cycle returns, so cycles never overlap.
type Scheduler struct {
	InitialDelay time.Duration
	Interval     time.Duration
}

// 🏗️ NewScheduler creates a scheduler, using the defaults for zero values
func NewScheduler(initialDelay, interval time.Duration) *Scheduler {
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		InitialDelay: initialDelay,
		Interval:     interval,
	}
}

// 🏃 Run blocks running cycle until ctx is cancelled and returns the
// cancellation cause.
func (s *Scheduler) Run(ctx context.Context, cycle func(ctx context.Context)) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Dur("initial_delay", s.InitialDelay).
		Dur("interval", s.Interval).
		Msg("scheduler started")

	delay := s.InitialDelay
	for {
		if err := wait(ctx, delay); err != nil {
			logger.Debug().Msg("scheduler stopped")
			return errors.Errorf("scheduler stopped: %w", err)
		}
		cycle(ctx)
		delay = s.Interval
	}
}

// wait sleeps for d or until ctx is done
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
