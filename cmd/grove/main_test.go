package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/pkg/cli"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoSuitePasses(t *testing.T) {
	suite := grove.New(grove.WithRandom(true), grove.WithSeed(3))
	define(suite)

	report, err := suite.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK(), "failures: %+v", report.Failures())
	assert.Len(t, report.Results, 7)
	assert.Equal(t, 1, report.Count(domain.StatusPending))
}

func TestDemoList(t *testing.T) {
	cmd := cli.NewRootCommand("grove", define)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "list"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "[0] stack\n")
	assert.Contains(t, out.String(), "[0:1:0] it behaves like a stack holding (shared \"a stack holding\")")
	assert.Contains(t, out.String(), "[0:2] under load [timeout 1s]")
}
