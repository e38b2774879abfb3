package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"timeline-cli/internal/config"
	"timeline-cli/internal/seed"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// mustEnvelope runs args with an isolated config file and decodes the json
// envelope.
func mustEnvelope(t *testing.T, args ...string) map[string]any {
	t.Helper()
	args = append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...)
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: timeline %v\nerr: %v\nstderr:\n%s", args, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected envelope to contain data; got %v", env)
	}
	return env
}

const sessionYAML = `rows:
  - id: row1
  - id: row2
  - id: spare
    disabled: true
items:
  - id: A
    row: row1
    start: 2025-03-09T08:00:00Z
    end: 2025-03-09T09:00:00Z
    selected: true
  - id: B
    row: row1
    start: 2025-03-09T10:00:00Z
    end: 2025-03-09T11:00:00Z
    selected: true
  - id: C
    row: row2
    start: 2025-03-09T08:00:00Z
    end: 2025-03-09T09:00:00Z
`

const dragScript = `steps:
  - op: pointer_down
    draggable: true
  - op: drag_start
    id: A
  - op: drag_move
    id: A
    dx: 3
    shift: 1h
  - op: drag_end
    id: A
    over: row2
    shift: 1h
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestDocsCommand(t *testing.T) {
	t.Parallel()

	env := mustEnvelope(t, "docs")
	topics, _ := env["data"].(map[string]any)["topics"].([]any)
	if len(topics) != 3 {
		t.Fatalf("expected 3 topics; got %v", topics)
	}

	stdout, _, err := runCLI(t, []string{"docs", "gestures", "--raw"})
	if err != nil {
		t.Fatalf("docs --raw: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "# Gestures") {
		t.Fatalf("expected raw markdown; got %q", stdout)
	}

	_, stderr, err := runCLI(t, []string{"docs", "nope"})
	if err == nil || !strings.Contains(string(stderr), "unknown docs topic") {
		t.Fatalf("expected unknown topic error; got err=%v stderr=%q", err, stderr)
	}
}

func TestSeedRoundTripsThroughSeedFile(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	stdout, stderr, err := runCLI(t, []string{"--config", cfgPath, "seed", "--rows", "3", "--items", "5", "--rand-seed", "7"})
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, stderr)
	}
	sess, err := seed.Decode(bytes.NewReader(stdout), nil)
	if err != nil {
		t.Fatalf("expected yaml seed document; got %v\n%s", err, stdout)
	}
	if len(sess.Rows) != 3 || len(sess.Items) != 5 {
		t.Fatalf("expected 3 rows and 5 items; got %d and %d", len(sess.Rows), len(sess.Items))
	}

	again, _, err := runCLI(t, []string{"--config", cfgPath, "seed", "--rows", "3", "--items", "5", "--rand-seed", "7"})
	if err != nil || !bytes.Equal(again, stdout) {
		t.Fatalf("expected a seeded generator to repeat itself")
	}

	path := writeFile(t, "seed.yaml", string(stdout))
	env := mustEnvelope(t, "--seed-file", path, "items")
	items, _ := env["data"].([]any)
	if len(items) != 5 {
		t.Fatalf("expected 5 items from the seed file; got %d", len(items))
	}
}

func TestItemsRowFilter(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "seed.yaml", sessionYAML)
	env := mustEnvelope(t, "--seed-file", path, "items", "--row", "row1")
	items, _ := env["data"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items in row1; got %d", len(items))
	}

	_, _, err := runCLI(t, []string{"--config", filepath.Join(t.TempDir(), "c.toml"), "--seed-file", path, "items", "--row", "ghost"})
	var nf notFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found error; got %v", err)
	}
}

func TestReplayCommand(t *testing.T) {
	t.Parallel()

	sessPath := writeFile(t, "seed.yaml", sessionYAML)
	scriptPath := writeFile(t, "drag.yaml", dragScript)
	env := mustEnvelope(t, "--seed-file", sessPath, "replay", scriptPath, "--stable-ids")
	data := env["data"].(map[string]any)

	rows := map[string]string{}
	for _, raw := range data["items"].([]any) {
		it := raw.(map[string]any)
		rows[it["id"].(string)] = it["rowId"].(string)
	}
	if rows["A"] != "row2" || rows["B"] != "row2" || rows["C"] != "row2" {
		t.Fatalf("expected the selected pair moved to row2; got %v", rows)
	}

	journal := data["journal"].([]any)
	if len(journal) != 1 || journal[0].(map[string]any)["kind"] != "group-drag" {
		t.Fatalf("expected one group-drag journal entry; got %v", journal)
	}
	broadcasts := data["broadcasts"].([]any)
	if len(broadcasts) != 1 {
		t.Fatalf("expected one broadcast; got %d", len(broadcasts))
	}
	if sid := broadcasts[0].(map[string]any)["sessionId"]; sid != "drag-1" {
		t.Fatalf("expected stable session id drag-1; got %v", sid)
	}
}

func TestReplayRejectsBadScript(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.yaml", "steps:\n  - op: teleport\n")
	_, stderr, err := runCLI(t, []string{"--config", filepath.Join(t.TempDir(), "c.toml"), "replay", path})
	if err == nil || !strings.Contains(string(stderr), "unknown op") {
		t.Fatalf("expected unknown op error; got err=%v stderr=%q", err, stderr)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "nested", "config.toml")
	if _, stderr, err := runCLI(t, []string{"--config", cfgPath, "config", "init"}); err != nil {
		t.Fatalf("config init: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("expected config file written: %v", err)
	}
	_, _, err := runCLI(t, []string{"--config", cfgPath, "config", "init"})
	if !errors.Is(err, config.ErrExists) {
		t.Fatalf("expected ErrExists on second init; got %v", err)
	}
	if _, _, err := runCLI(t, []string{"--config", cfgPath, "config", "init", "--force"}); err != nil {
		t.Fatalf("expected --force to overwrite; got %v", err)
	}

	stdout, _, err := runCLI(t, []string{"--config", cfgPath, "--format", "yaml", "config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"rows: 4", "snap: 15m0s", "mouse: cell-motion"} {
		if !strings.Contains(string(stdout), want) {
			t.Fatalf("expected %q in config show output:\n%s", want, stdout)
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	_, stderr, err := runCLI(t, []string{"--format", "xml", "docs"})
	if err == nil || !strings.Contains(string(stderr), "unknown format") {
		t.Fatalf("expected unknown format error; got err=%v stderr=%q", err, stderr)
	}
}

func TestNewLoggerDiscardsWithoutPath(t *testing.T) {
	t.Parallel()

	logger, closeLog, err := newLogger("  ")
	if err != nil || logger == nil {
		t.Fatalf("expected a discard logger; got %v", err)
	}
	closeLog()

	path := filepath.Join(t.TempDir(), "debug.log")
	logger, closeLog, err = newLogger(path)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Debug("drag started", "item", "A")
	closeLog()
	b, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(b), "drag started") {
		t.Fatalf("expected debug record in log file; got %q err=%v", b, err)
	}
}
