package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRootCmd_Exists(t *testing.T) {
	cmd := getRootCmd()
	require.NotNil(t, cmd, "Root command should exist")
	assert.Equal(t, "gizi", cmd.Use)
	assert.NotNil(t, cmd.PersistentPreRunE, "bootstrap should be set")
	assert.NotNil(t, cmd.RunE)
	assert.True(t, cmd.SilenceErrors)
	assert.True(t, cmd.SilenceUsage)
}

func TestGetRootCmd_Version(t *testing.T) {
	tests := []struct {
		msg  string
		flag string
	}{
		{"long flag", "--version"},
		{"short flag", "-V"},
	}

	for _, v := range tests {
		cmd := getRootCmd()
		cmd.Version = "version: v1.2.3\nbuild:   abc123"

		buf := new(bytes.Buffer)
		cmd.SetOut(buf)
		cmd.SetArgs([]string{v.flag})

		err := cmd.Execute()
		require.NoError(t, err, v.msg)

		output := buf.String()
		assert.Contains(t, output, "v1.2.3", v.msg)
		assert.Contains(t, output, "abc123", v.msg)
		assert.NotContains(t, output, "gizi version", v.msg)
	}
}

func TestGetRootCmd_HelpText(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	helpText := buf.String()
	assert.Contains(t, helpText, "gizi")
	assert.Contains(t, helpText, "GIZI_DATABASE_DRIVER")
	assert.Contains(t, helpText, "WHO")
	assert.Contains(t, helpText, "--json")
}

func TestGetRootCmd_Subcommands(t *testing.T) {
	cmd := getRootCmd()

	tests := []struct {
		path  []string
		flags []string
	}{
		{[]string{"create"}, []string{"force"}},
		{[]string{"migrate"}, nil},
		{[]string{"optimize"}, nil},
		{[]string{"child", "add"}, []string{"id", "name", "sex", "birth"}},
		{[]string{"child", "list"}, nil},
		{[]string{"child", "correct"}, []string{"name", "sex", "birth"}},
		{[]string{"assess"}, []string{"weight", "height", "muac", "at", "note", "supersedes"}},
		{[]string{"history"}, nil},
		{[]string{"chart"}, []string{"metric"}},
		{[]string{"intake", "log"}, []string{"food", "portion", "date", "desc", "energy"}},
		{[]string{"intake", "photo"}, []string{"date", "hint"}},
		{[]string{"intake", "progress"}, []string{"date"}},
		{[]string{"intake", "recommend"}, []string{"date"}},
		{[]string{"intake", "plan"}, []string{"date"}},
		{[]string{"ask"}, []string{"session", "chip", "interactive"}},
		{[]string{"facilities"}, []string{"service", "limit"}},
		{[]string{"import"}, []string{"jobs"}},
		{[]string{"serve"}, []string{"port"}},
	}

	for _, v := range tests {
		name := strings.Join(v.path, " ")
		sub, _, err := cmd.Find(v.path)
		require.NoError(t, err, name)
		assert.Equal(t, v.path[len(v.path)-1], sub.Name(), name)
		for _, f := range v.flags {
			assert.NotNil(t, sub.Flags().Lookup(f), name+" --"+f)
		}
	}
}

func TestGetRootCmd_IndependentInstances(t *testing.T) {
	cmd1 := getRootCmd()
	cmd2 := getRootCmd()

	assert.NotSame(t, cmd1, cmd2)

	cmd1.Version = "version1"
	cmd2.Version = "version2"
	assert.Equal(t, "version1", cmd1.Version)
	assert.Equal(t, "version2", cmd2.Version)
}

func TestGetRootCmd_InvalidCommand(t *testing.T) {
	cmd := getRootCmd()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"nonexistent-command"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}
