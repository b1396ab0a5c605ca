package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/productmanage/testing"
)

type fakeMigrator struct {
	version uint
	upErr   error
	calls   []string
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	if f.upErr != nil {
		return f.upErr
	}
	f.version = 1
	return nil
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	f.version = 0
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, false, nil }

func TestExecuteCommands(t *testing.T) {
	m := &fakeMigrator{}
	var out bytes.Buffer

	require.NoError(t, execute("up", m, &out))
	require.Equal(t, "version=1 dirty=false\n", out.String())

	out.Reset()
	require.NoError(t, execute("down", m, &out))
	require.Equal(t, "version=0 dirty=false\n", out.String())

	out.Reset()
	require.NoError(t, execute("version", m, &out))
	require.Equal(t, []string{"up", "down"}, m.calls)
}

func TestExecutePropagatesErrors(t *testing.T) {
	boom := errors.New("dirty database")
	var out bytes.Buffer
	require.ErrorIs(t, execute("up", &fakeMigrator{upErr: boom}, &out), boom)
	require.Empty(t, out.String())
	require.Error(t, execute("sideways", &fakeMigrator{}, &out))
}

func TestRunRejectsBadUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	require.Contains(t, stderr.String(), "usage: migrate")

	stderr.Reset()
	require.Equal(t, 2, run(context.Background(), []string{"sideways"}, &stdout, &stderr))
	require.Contains(t, stderr.String(), `unknown command "sideways"`)
}
