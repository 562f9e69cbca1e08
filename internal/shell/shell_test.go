package shell

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, commands ...string) string {
	t.Helper()
	var buf bytes.Buffer
	s := New(&buf)
	for _, c := range commands {
		s.Exec(c)
	}
	return buf.String()
}

func TestScenarioCreateAndList(t *testing.T) {
	out := run(t, "in", "cr foo", "dr")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, []string{"disk initialized", "foo created", "foo "}, lines)
}

func TestScenarioWriteSeekRead(t *testing.T) {
	out := run(t, "in", "cr a", "op a", "wr 1 x 10", "sk 1 0", "rd 1 10")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, []string{
		"disk initialized",
		"a created",
		"a opened 1",
		"10 bytes written",
		"position is 0",
		"xxxxxxxxxx",
	}, lines)
}

func TestScenarioDestroy(t *testing.T) {
	out := run(t, "in", "cr a", "cr b", "de a", "dr")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, "b ", lines[len(lines)-1])
	require.Contains(t, out, "a destroyed ")
}

func TestScenarioWriteCapAt192(t *testing.T) {
	out := run(t, "in", "cr a", "op a", "wr 1 z 192", "wr 1 z 1")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, "192 bytes written", lines[len(lines)-2])
	require.Equal(t, "0 bytes written", lines[len(lines)-1])
}

func TestScenarioDoubleCloseErrors(t *testing.T) {
	out := run(t, "in", "cr a", "op a", "cl 1", "cl 1")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, "error", lines[len(lines)-1])
}

func TestScenarioSaveAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.img")

	var buf bytes.Buffer
	first := New(&buf)
	for _, c := range []string{"in", "cr a", "op a", "sv " + path} {
		first.Exec(c)
	}
	require.Contains(t, buf.String(), "disk saved")

	var buf2 bytes.Buffer
	second := New(&buf2)
	for _, c := range []string{"in " + path, "op a"} {
		second.Exec(c)
	}
	lines := strings.Split(strings.TrimRight(buf2.String(), "\n"), "\n")
	require.Equal(t, []string{"disk restored", "a opened 1"}, lines)
}

func TestCommandBeforeMountErrors(t *testing.T) {
	out := run(t, "cr a")
	require.Equal(t, "error\n", out)
}

func TestBlankLinePrintsNewline(t *testing.T) {
	out := run(t, "in", "")
	lines := strings.Split(out, "\n")
	require.Equal(t, "disk initialized", lines[0])
	require.Equal(t, "", lines[1])
}
