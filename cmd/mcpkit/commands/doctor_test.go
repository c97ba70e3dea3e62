package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpkit/internal/doctor"
	"github.com/thoreinstein/mcpkit/internal/errors"
)

func TestRunDoctor_Clean(t *testing.T) {
	env := newTestEnv(t, "")
	env.write(t, claudePath, `{"mcpServers": {"modelcontextprotocol/fetch": {"command": "uvx"}}}`)

	require.NoError(t, runDoctor(t.Context(), env.app, doctorOptions{configPath: testConfigPath}))

	out := env.out.String()
	assert.Contains(t, out, "agent-claude: 1 server(s) configured")
	assert.Contains(t, out, "config-file: no config file, using defaults")
	assert.Contains(t, out, "Summary: 1 passed")
}

func TestRunDoctor_Errors(t *testing.T) {
	env := newTestEnv(t, "")
	env.write(t, claudePath, `{"mcpServers": `)
	env.write(t, testConfigPath, "version: 1\ndefault_agent: vim\n")

	err := runDoctor(t.Context(), env.app, doctorOptions{configPath: testConfigPath})
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))
	assert.True(t, errors.Is(err, errAlreadyReported))

	out := env.out.String()
	assert.Contains(t, out, "✗ agent-claude")
	assert.Contains(t, out, "mcpkit backup restore --agent claude")
	assert.Contains(t, out, "2 error(s)")
}

func TestRunDoctor_WarningsExitUser(t *testing.T) {
	env := newTestEnv(t, "")
	env.write(t, "/cache/catalog/catalog-latest.json", "{broken")

	err := runDoctor(t.Context(), env.app, doctorOptions{configPath: testConfigPath})
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestRunDoctor_JSON(t *testing.T) {
	env := newTestEnv(t, "")
	env.jsonMode()
	env.write(t, "/work/.mcp.json", `{"mcpServers": {}}`)

	require.NoError(t, runDoctor(t.Context(), env.app, doctorOptions{project: ".", configPath: testConfigPath}))

	var report doctor.Report
	env.lastJSON(t, &report)
	require.NotEmpty(t, report.Results)

	var claude *doctor.CheckResult
	for _, r := range report.Results {
		if r.Name == "agent-claude" {
			claude = r
		}
	}
	require.NotNil(t, claude)
	assert.Equal(t, "/work/.mcp.json", claude.Details["path"])
	assert.Equal(t, 1, report.Summary.Passed)
}

func TestRunDoctor_Quiet(t *testing.T) {
	env := newTestEnv(t, "")

	require.NoError(t, runDoctor(t.Context(), env.app, doctorOptions{quiet: true, configPath: testConfigPath}))
	assert.Empty(t, env.out.String())
}
