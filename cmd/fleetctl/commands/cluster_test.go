package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	cmd := Create()

	require.NotNil(t, cmd)
	assert.Equal(t, "create NAME", cmd.Use)
	assert.Equal(t, "Create a new cluster", cmd.Short)
	assert.Contains(t, cmd.Long, "m3.xlarge")
	assert.NotNil(t, cmd.RunE)
	assert.Error(t, cmd.Args(cmd, nil), "name is required")
}

func TestCreate_Flags(t *testing.T) {
	cmd := Create()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "num-instances", shorthand: "n", defValue: "1"},
		{name: "type", shorthand: "t", defValue: ""},
		{name: "ami", defValue: ""},
		{name: "provider", defValue: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag, "%s flag should exist", tt.name)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestAdd(t *testing.T) {
	cmd := Add()

	assert.Equal(t, "add NAME", cmd.Use)
	flag := cmd.Flags().Lookup("num-instances")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "1", flag.DefValue)
}

func TestKill(t *testing.T) {
	cmd := Kill()

	assert.Equal(t, "kill NAME INDEX", cmd.Use)
	assert.Contains(t, cmd.Long, "Killing the last instance")
	assert.Error(t, cmd.Args(cmd, []string{"web"}))
	assert.NoError(t, cmd.Args(cmd, []string{"web", "0"}))
}

func TestKill_RejectsBadIndex(t *testing.T) {
	cmd := Kill()

	err := cmd.RunE(cmd, []string{"web", "first"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid instance index")
}

func TestDestructiveCommands_YesFlag(t *testing.T) {
	for _, cmd := range []*cobra.Command{Kill(), Shutdown(), ShutdownAll()} {
		flag := cmd.Flags().Lookup("yes")
		require.NotNil(t, flag, cmd.Use)
		assert.Equal(t, "y", flag.Shorthand, cmd.Use)
		assert.Equal(t, "false", flag.DefValue, cmd.Use)
	}
}

func TestShowCommands(t *testing.T) {
	assert.Equal(t, "show NAME", Show().Use)
	assert.Equal(t, "show-all", ShowAll().Use)
	assert.Equal(t, []string{"show_all"}, ShowAll().Aliases)
	assert.Equal(t, "dns NAME", DNS().Use)
}
