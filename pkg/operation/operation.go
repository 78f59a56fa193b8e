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

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/batchcopier/pkg/metrics"
	"github.com/walteh/batchcopier/pkg/pattern"
)

// 📦 Grouper lists markers and resolves the transfer unit of each one
type Grouper interface {
	// ListMarkers returns the marker files found in inputDir
	ListMarkers(ctx context.Context, inputDir string, marker *pattern.Pattern) ([]string, error)
	// GroupFor returns the companions of markerPath followed by markerPath
	GroupFor(ctx context.Context, markerPath, inputDir string) ([]string, error)
}

// 🚚 Transferor copies one file to backup and moves it to target
type Transferor interface {
	Transfer(ctx context.Context, file, backupDir, targetDir string) error
}

// 👀 Observer is told about the progress of a cycle
type Observer interface {
	StartCycle(ctx context.Context, markers int)
	FileTransferred(ctx context.Context, file string)
	BatchFailed(ctx context.Context, marker string, err error)
	EndCycle(ctx context.Context, report CycleReport)
}

// 🔧 Options contains everything a BatchRunner needs
type Options struct {
	InputDir  string
	BackupDir string
	TargetDir string

	// Marker selects the marker files in InputDir
	Marker *pattern.Pattern

	Grouper    Grouper
	Transferor Transferor

	// Counters receives the cycle counters; defaults to metrics.Discard
	Counters metrics.CounterSink
	// Observer is optional
	Observer Observer
}

// 📊 CycleReport summarizes one cycle
type CycleReport struct {
	Start   time.Time
	End     time.Time
	Markers int   // Markers found by the listing
	Batches int   // Batches transferred completely
	Failed  int   // Batches (or the listing) that failed
	Files   int   // Files transferred
	Err     error // Set when the cycle could not list markers
}

// Duration returns how long the cycle took.
func (r CycleReport) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// 🏭 New creates a BatchRunner with the given options
func New(opts Options) (*BatchRunner, error) {
	if opts.InputDir == "" {
		return nil, errors.Errorf("input directory is required")
	}
	if opts.BackupDir == "" {
		return nil, errors.Errorf("backup directory is required")
	}
	if opts.TargetDir == "" {
		return nil, errors.Errorf("target directory is required")
	}
	if opts.Marker == nil {
		return nil, errors.Errorf("marker pattern is required")
	}
	if opts.Grouper == nil {
		return nil, errors.Errorf("grouper is required")
	}
	if opts.Transferor == nil {
		return nil, errors.Errorf("transferor is required")
	}
	if opts.Counters == nil {
		opts.Counters = metrics.Discard
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	return &BatchRunner{
		inputDir:   opts.InputDir,
		backupDir:  opts.BackupDir,
		targetDir:  opts.TargetDir,
		marker:     opts.Marker,
		grouper:    opts.Grouper,
		transferor: opts.Transferor,
		counters:   opts.Counters,
		observer:   opts.Observer,
	}, nil
}

type nopObserver struct{}

func (nopObserver) StartCycle(context.Context, int) {}
func (nopObserver) FileTransferred(context.Context, string) {}
func (nopObserver) BatchFailed(context.Context, string, error) {}
func (nopObserver) EndCycle(context.Context, CycleReport) {}
