// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func Test_Logger_levelFiltering(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	logger := New(SetWriter(buffer), SetLevel(Warn))

	logger.Info("filtered out")
	assert.Empty(t, buffer.String())

	logger.Warn("kept")
	assert.Contains(t, buffer.String(), "WARN kept")
}

func Test_Logger_context(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	logger := New(SetWriter(buffer), SetLevel(Trace),
		AddContext("pkg", "election"))

	logger.Errorf("failed after %d rounds", 3)

	line := buffer.String()
	assert.Contains(t, line, "EROR failed after 3 rounds")
	assert.Contains(t, line, "pkg=election")
}

func Test_Logger_childInheritsAndOverrides(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	parent := New(SetWriter(buffer), SetLevel(Error),
		AddContext("pkg", "api"))
	child := parent.New(SetLevel(Trace), AddContext("module", "election"))

	child.Debug("from child")

	line := buffer.String()
	require.NotEmpty(t, line)
	assert.Contains(t, line, "DBUG from child")
	assert.Contains(t, line, "module=election")
	assert.Contains(t, line, "pkg=api")

	buffer.Reset()
	parent.Debug("from parent")
	assert.Empty(t, buffer.String())
}

func Test_Logger_Patch_propagatesToChildren(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	parent := New(SetWriter(buffer), SetLevel(Info))
	child := parent.New(AddContext("pkg", "election"))

	child.Debug("filtered out")
	require.Empty(t, buffer.String())

	parent.PatchLevel(Trace)

	child.Debug("debug message")
	line := buffer.String()
	assert.Contains(t, line, "DBUG debug message")
	assert.Contains(t, line, "pkg=election")
}

func Test_PatchLevel_reachesEarlyGlobalChildren(t *testing.T) {
	// Not parallel: patches the global logger.
	buffer := bytes.NewBuffer(nil)
	Patch(SetWriter(buffer))
	defer func() {
		Patch(SetWriter(os.Stdout))
		PatchLevel(Info)
	}()

	// Package loggers are created at init time, long before the
	// command line level is parsed; the patched level must still
	// reach them.
	child := NewFromGlobal(AddContext("pkg", "api"))

	PatchLevel(Trace)

	child.Debug("debug message")
	assert.Contains(t, buffer.String(), "DBUG debug message")
}

func Test_ParseLevel(t *testing.T) {
	t.Parallel()

	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, Debug, level)

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrLevelNotRecognised)
}
