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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dirs struct {
	input, backup, target string
}

func createDirs(t *testing.T) dirs {
	t.Helper()

	root := t.TempDir()
	d := dirs{
		input:  filepath.Join(root, "input"),
		backup: filepath.Join(root, "backup"),
		target: filepath.Join(root, "target"),
	}
	for _, dir := range []string{d.input, d.backup, d.target} {
		require.NoError(t, os.Mkdir(dir, 0755))
	}
	return d
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestOnceCommand(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		collide     string
		wantErr     bool
		errContains string
		moved       []string
		kept        []string
	}{
		{
			name:  "single_marker",
			files: []string{"run.001.ok"},
			moved: []string{"run.001.ok"},
		},
		{
			name:  "batch_with_companions",
			files: []string{"run.002.ok", "run.zip", "run_1.zip", "other.zip"},
			moved: []string{"run.002.ok", "run.zip", "run_1.zip"},
			kept:  []string{"other.zip"},
		},
		{
			name:        "failing_batch",
			files:       []string{"run.003.ok", "run.zip"},
			collide:     "run.zip",
			wantErr:     true,
			errContains: "1 batch(es) failed",
			kept:        []string{"run.003.ok", "run.zip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := createDirs(t)
			for _, name := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(d.input, name), []byte(name), 0644))
			}
			if tt.collide != "" {
				require.NoError(t, os.WriteFile(filepath.Join(d.target, tt.collide), []byte("existing"), 0644))
			}

			_, err := execute(t, "once",
				"--input", d.input,
				"--target", d.target,
				"--backup", d.backup,
				"--pattern", `run\.\d{3}\.ok`,
			)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}

			for _, name := range tt.moved {
				assert.FileExists(t, filepath.Join(d.target, name))
				assert.FileExists(t, filepath.Join(d.backup, name))
				assert.NoFileExists(t, filepath.Join(d.input, name))
			}
			for _, name := range tt.kept {
				assert.FileExists(t, filepath.Join(d.input, name))
			}
		})
	}
}

func TestOnceCommandWithConfigFile(t *testing.T) {
	d := createDirs(t)
	require.NoError(t, os.WriteFile(filepath.Join(d.input, "b.ok"), []byte("marker"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(d.input, "b.zip.part"), []byte("partial"), 0644))

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
input: ` + d.input + `
target: ` + d.target + `
backup: /does/not/matter
pattern: 'b\.ok'
ignore_patterns:
  - "*.part"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644), "writing config file")

	// the flag wins over the file
	_, err := execute(t, "once", "--config", configPath, "--backup", d.backup)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(d.target, "b.ok"))
	assert.FileExists(t, filepath.Join(d.backup, "b.ok"))
	assert.FileExists(t, filepath.Join(d.input, "b.zip.part"))
}

func TestInvalidPatternAbortsStartup(t *testing.T) {
	d := createDirs(t)

	_, err := execute(t, "once",
		"--input", d.input,
		"--target", d.target,
		"--backup", d.backup,
		"--pattern", `run(\.ok`,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestCheckCommand(t *testing.T) {
	d := createDirs(t)

	_, err := execute(t, "check", "--input", d.input, "--target", d.target, "--backup", d.backup, "--pattern", `.*\.ok`)
	require.NoError(t, err)

	_, err = execute(t, "check", "--input", d.input, "--target", d.target, "--backup", filepath.Join(d.backup, "missing"), "--pattern", `.*\.ok`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 director(ies) unusable")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "batchcopier")
}
