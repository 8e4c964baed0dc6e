package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
}

func TestMCPCmd_Short(t *testing.T) {
	assert.Equal(t, "MCP server commands", mcpCmd.Short)
}

func TestMCPServeCmd_Use(t *testing.T) {
	assert.Equal(t, "serve", mcpServeCmd.Use)
}

func TestMCPServeCmd_Short(t *testing.T) {
	assert.Equal(t, "Start the MCP server", mcpServeCmd.Short)
}

func TestMCPServeCmd_Long(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "stdio")
	assert.Contains(t, mcpServeCmd.Long, "Claude Desktop")
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "port flag should exist")
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RegisteredUnderMCP(t *testing.T) {
	found := false
	for _, cmd := range mcpCmd.Commands() {
		if cmd == mcpServeCmd {
			found = true
		}
	}
	assert.True(t, found, "mcp serve should be a subcommand of mcp")
}
