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
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/batchcopier/pkg/metrics"
	"github.com/walteh/batchcopier/pkg/pattern"
)

// 🏃 BatchRunner runs scan-and-transfer cycles over the input directory
type BatchRunner struct {
	inputDir  string
	backupDir string
	targetDir string
	marker    *pattern.Pattern

	grouper    Grouper
	transferor Transferor
	counters   metrics.CounterSink
	observer   Observer
}

// 🔄 RunCycle lists the markers once and transfers the batch of each one.
// A failing batch is counted and logged and the next marker is processed;
// nothing escapes the cycle. Cancelling ctx stops the cycle before the next
// marker, never in the middle of a batch.
func (r *BatchRunner) RunCycle(ctx context.Context) (report CycleReport) {
	logger := zerolog.Ctx(ctx)

	r.counters.Increment(metrics.Executions)
	report.Start = time.Now()
	logger.Trace().Time("start", report.Start).Msg("start cycle")

	defer func() {
		if rec := recover(); rec != nil {
			r.counters.Increment(metrics.Failures)
			report.Failed++
			report.Err = errors.Errorf("cycle panicked: %v", rec)
			logger.Error().Err(report.Err).Msg("recovered from panic")
		}

		report.End = time.Now()
		r.observer.EndCycle(ctx, report)
		logger.Trace().Time("end", report.End).Msg("end cycle")
		logger.Debug().
			Dur("duration", report.Duration()).
			Int("markers", report.Markers).
			Int("batches", report.Batches).
			Int("failed", report.Failed).
			Int("files", report.Files).
			Msg("cycle finished")
	}()

	markers, err := r.grouper.ListMarkers(ctx, r.inputDir, r.marker)
	if err != nil {
		r.counters.Increment(metrics.Failures)
		report.Failed++
		report.Err = errors.Errorf("listing markers: %w", err)
		logger.Error().Err(err).Str("dir", r.inputDir).Msg("error listing marker files")
		return report
	}

	report.Markers = len(markers)
	r.observer.StartCycle(ctx, len(markers))

	for _, marker := range markers {
		if ctx.Err() != nil {
			logger.Info().Msg("cycle interrupted, remaining markers left for the next run")
			break
		}

		files, err := r.processMarker(ctx, marker)
		report.Files += files
		if err != nil {
			r.counters.Increment(metrics.Failures)
			report.Failed++
			logger.Error().Err(err).Str("marker", marker).Msg("error processing batch")
			r.observer.BatchFailed(ctx, marker, err)
			continue
		}
		report.Batches++
	}

	return report
}

// 📄 processMarker transfers the unit of one marker in order and returns the
// number of files transferred. It stops at the first failure, which leaves
// the marker in the input directory.
func (r *BatchRunner) processMarker(ctx context.Context, marker string) (int, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("file", filepath.Base(marker)).Msg("processing ok file")

	unit, err := r.grouper.GroupFor(ctx, marker, r.inputDir)
	if err != nil {
		return 0, errors.Errorf("grouping batch: %w", err)
	}

	for i, file := range unit {
		logger.Debug().Str("file", filepath.Base(file)).Msg("processing file")
		if err := r.transferor.Transfer(ctx, file, r.backupDir, r.targetDir); err != nil {
			return i, errors.Errorf("transferring batch: %w", err)
		}
		r.counters.Increment(metrics.FilesProcessed)
		r.observer.FileTransferred(ctx, file)
	}

	return len(unit), nil
}
