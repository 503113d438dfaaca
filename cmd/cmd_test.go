package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passing = `
[[def]]
name = "List"
types = ["+"]

[[case]]
name = "list of error"
relation = "sub"
a = "List<{error}>"
b = "List<Int>"
expect = "ok"
`

const failing = `
[[case]]
name = "int is not bool"
relation = "sub"
a = "Int"
b = "Bool"
expect = "ok"
`

func writeScenario(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.toml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestCheckPasses(t *testing.T) {
	out, err := execute(t, CheckCmd, "--color", "never", writeScenario(t, passing))
	require.NoError(t, err)
	assert.Contains(t, out, "PASS list of error: List<{error}> sub List<Int>")
	assert.Contains(t, out, "1 passed, 0 failed")
}

func TestCheckFails(t *testing.T) {
	out, err := execute(t, CheckCmd, "--color", "never", writeScenario(t, failing))
	require.Error(t, err)
	assert.Equal(t, "1 case(s) failed", err.Error())
	assert.Contains(t, out, "FAIL int is not bool")
	assert.Contains(t, out, "expected ok, got mismatch")
}

func TestCheckReportAndDump(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "report.msgpack")
	_, err := execute(t, CheckCmd, "--color", "never", "--report", reportPath, writeScenario(t, failing))
	require.Error(t, err)
	t.Cleanup(func() { *checkReport = "" })

	out, err := execute(t, DumpCmd, reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, `Case:`)
	assert.Contains(t, out, `"int is not bool"`)
}

func TestCheckRejectsBadFlags(t *testing.T) {
	_, err := execute(t, CheckCmd, "--color", "sometimes", writeScenario(t, passing))
	assert.ErrorContains(t, err, "unknown colour mode")
	*checkColor = "auto"

	_, err = execute(t, CheckCmd, "-l", "loud", writeScenario(t, passing))
	assert.Error(t, err)
	*logLevel = "warn"
}
