package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/decisioncore/internal/example/fetch"
	"github.com/joeycumines/decisioncore/internal/storage"
	"github.com/joeycumines/decisioncore/internal/treedoc"
)

// execute runs the command line in an empty home, so no user configuration
// is picked up. Commands replace the default logger, so these tests do not
// run in parallel.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))
	t.Setenv("DECISIONCORE_CONFIG", "")
	var out, errOut bytes.Buffer
	err = Execute(context.Background(), "1.2.3", args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRoot_ShowsHelpWhenNoSubcommand(t *testing.T) {
	out, _, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "simulate")
	assert.Contains(t, out, "tree")
}

func TestRoot_RejectsUnknownFlags(t *testing.T) {
	_, _, err := execute(t, "--unknown-flag", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestRoot_BadConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: loud\n")
	_, _, err := execute(t, "--config", path, "simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "decisioncore 1.2.3\n", out)

	out, _, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
}

func TestVersion_IgnoresConfig(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.NoError(t, err)
}

func TestSimulate(t *testing.T) {
	out, _, err := execute(t, "simulate", "--ticks", "50", "--seed", "3", "--agents", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "dog-1 ticks=50 ")
	assert.Contains(t, out, "dog-2 ticks=50 ")
	assert.Contains(t, out, "2 agent(s) in")
	assert.NotContains(t, out, "\x1b[", "no colour outside a terminal")
}

func TestSimulate_Trace(t *testing.T) {
	out, _, err := execute(t, "simulate", "--ticks", "3", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "dog-1 #1 ")
	assert.Contains(t, out, "dog-1 #3 ")
	assert.NotContains(t, out, "dog-1 #4 ")
}

func TestSimulate_Concurrent(t *testing.T) {
	out, _, err := execute(t, "simulate", "--agents", "3", "--interval", "1ms", "--ticks", "5", "--trace")
	require.NoError(t, err)
	for _, name := range []string{"dog-1", "dog-2", "dog-3"} {
		assert.Contains(t, out, name+" ticks=5 ")
		assert.Equal(t, 5, strings.Count(out, name+" #"), "traces of %s", name)
	}
}

func TestSimulate_ConfigAndFlags(t *testing.T) {
	path := writeFile(t, "config.yaml", `
sim:
  ticks: 7
  seed: 11
blackboard:
  entries:
    - name: CalledDog
      type: bool
      value: false
`)
	out, _, err := execute(t, "--config", path, "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "dog-1 ticks=7 ")

	out, _, err = execute(t, "--config", path, "simulate", "--ticks", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "dog-1 ticks=4 ")
}

func TestSimulate_EnvOverridesConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "sim:\n  ticks: 7\n")
	t.Setenv("DECISIONCORE_SIM_TICKS", "9")
	out, _, err := execute(t, "--config", path, "simulate")
	require.NoError(t, err)
	assert.Contains(t, out, "dog-1 ticks=9 ")
}

func TestSimulate_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"zero ticks", []string{"simulate", "--ticks", "0"}, "--ticks must be positive"},
		{"zero agents", []string{"simulate", "--agents", "0"}, "--agents must be positive"},
		{"negative interval", []string{"simulate", "--interval", "-1s"}, "--interval must not be negative"},
		{"missing tree", []string{"simulate", "--tree", "testdata/missing.yaml"}, "missing.yaml"},
		{"missing script", []string{"simulate", "--script", "testdata/missing.js"}, "failed to read script"},
		{"expert without script", []string{"simulate", "--expert", "Praise"}, "need a script"},
		{"unknown expert", []string{"simulate", "--script", "testdata/bark.js", "--expert", "Nobody"}, "Nobody"},
		{"arguments", []string{"simulate", "extra"}, "unknown command"},
		{"report below a file", []string{"simulate", "--ticks", "1", "--report", "testdata/bark.js/run.json"}, "failed to write report"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSimulate_ScriptedTree(t *testing.T) {
	out, _, err := execute(t, "simulate",
		"--ticks", "10",
		"--tree", "testdata/bark.yaml",
		"--script", "testdata/bark.js",
		"--expert", "Praise",
		"--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "Praise(50)")
	assert.Equal(t, 1, strings.Count(out, "Praise(50)"), "praise is given once")
	assert.Contains(t, out, "dog-1 ticks=10 ")
}

func TestSimulate_DocumentTree(t *testing.T) {
	out, _, err := execute(t, "simulate", "--ticks", "200", "--tree", "../example/fetch/testdata/dog_planned.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "dog-1 ticks=200 ")
}

func TestSimulate_Metrics(t *testing.T) {
	_, stderr, err := execute(t, "simulate", "--ticks", "5", "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, stderr, "serving metrics")
}

func TestSimulate_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "decisioncore.log")
	_, stderr, err := execute(t, "--log-file", path, "--log-level", "debug", "--log-format", "json", "simulate", "--ticks", "2")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"simulation started"`)
	assert.Contains(t, string(data), `"msg":"agent tick"`)
}

func TestSimulate_Report(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	_, stderr, err := execute(t, "simulate",
		"--ticks", "10",
		"--agents", "2",
		"--seed", "5",
		"--tree", "testdata/bark.yaml",
		"--script", "testdata/bark.js",
		"--expert", "Praise",
		"--report", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "report written")

	r, err := storage.Read(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), r.Seed)
	require.Len(t, r.Agents, 2)
	for _, ar := range r.Agents {
		assert.Equal(t, 10, ar.Ticks, ar.Name)
		assert.Equal(t, 1, ar.Winners["Praise"], ar.Name)
		assert.NotEmpty(t, ar.Blackboard, ar.Name)
	}

	dog, ok := r.Agent("dog-2")
	require.True(t, ok)
	var names []string
	for _, e := range dog.Blackboard {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, fetch.KeyCalledDog)
	assert.Contains(t, names, "Barks")
	assert.IsIncreasing(t, names)
}

func TestSimulate_ReportFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	cfg := writeFile(t, "config.yaml", "sim:\n  ticks: 3\n  report: "+path+"\n")
	_, _, err := execute(t, "--config", cfg, "simulate")
	require.NoError(t, err)

	r, err := storage.Read(path)
	require.NoError(t, err)
	require.Len(t, r.Agents, 1)
	assert.Equal(t, 3, r.Agents[0].Ticks)
}

func TestTree(t *testing.T) {
	out, _, err := execute(t, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, `tree "Dog"`)
	assert.Contains(t, out, `  priority "Dog Logic"`)
	assert.Contains(t, out, `sequence "FetchBall" priority=200`)
	assert.Contains(t, out, `leaf "Explore"`)
}

func TestTree_Document(t *testing.T) {
	out, _, err := execute(t, "tree", "../example/fetch/testdata/dog.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `leaf "IsFoodBowlAvailable"`)

	out, _, err = execute(t, "tree", "testdata/bark.yaml", "--script", "testdata/bark.js")
	require.NoError(t, err)
	assert.Contains(t, out, `sequence "Bark" priority=10`)
}

func TestTree_BadDocument(t *testing.T) {
	_, _, err := execute(t, "tree", "testdata/unknown.yaml")
	require.ErrorIs(t, err, treedoc.ErrUnknownStrategy)

	_, _, err = execute(t, "tree", "testdata/bark.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a script host")
}

func TestTree_Strategies(t *testing.T) {
	out, _, err := execute(t, "tree", "--strategies")
	require.NoError(t, err)
	names := strings.Fields(out)
	assert.Contains(t, names, "FetchBall")
	assert.Contains(t, names, "PlanEat")
	assert.IsIncreasing(t, names)
}
