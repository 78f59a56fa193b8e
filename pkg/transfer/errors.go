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

package transfer

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// Transfer steps reported in Failure.Op.
const (
	OpCopy = "copy"
	OpMove = "move"
)

// ErrTargetExists is the cause of a move refused because the target
// directory already holds a file of the same name.
var ErrTargetExists = errors.Base("file already exists in target")

// 💥 Failure reports a copy or move that did not complete for one file
type Failure struct {
	Op   string // OpCopy or OpMove
	Path string // File being transferred
	Err  error  // Underlying cause
}

func (e *Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Failure) Unwrap() error {
	return e.Err
}
