package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/phonebook/internal/config"
	"github.com/marcus/phonebook/internal/models"
	"github.com/marcus/phonebook/internal/output"
	"github.com/marcus/phonebook/internal/phonebook"
	"github.com/marcus/phonebook/internal/phonebookclient"
	"github.com/marcus/phonebook/internal/phonebooktest"
	"github.com/spf13/cobra"
)

var seedRecords = []models.Record{
	{ID: "1", Name: "Arto Hellas", Number: "040-123456"},
	{ID: "2", Name: "Ada Lovelace", Number: "39-44-5323523"},
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := output.Writer
	output.Writer = &buf
	t.Cleanup(func() { output.Writer = prev })
	return &buf
}

// isolateConfig points the config dir at a temp home and clears env overrides
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"PHONEBOOK_URL", "PHONEBOOK_RESOURCE", "PHONEBOOK_API_KEY", "PHONEBOOK_TIMEOUT", "PHONEBOOK_STATUS_DELAY"} {
		t.Setenv(k, "")
	}
}

func newTestPhonebook(t *testing.T, confirmer phonebook.Confirmer) (*phonebook.Synchronizer, *phonebooktest.Server) {
	t.Helper()
	srv := phonebooktest.NewServer(t, "persons", seedRecords...)
	sync := phonebook.New(phonebookclient.New(srv.URL, "persons", ""), confirmer, printNotifier())
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return sync, srv
}

func noTTY(assumeYes bool) *promptConfirmer {
	return &promptConfirmer{
		assumeYes:   assumeYes,
		interactive: func() bool { return false },
		ask: func(context.Context, string) (bool, error) {
			panic("ask called without a terminal")
		},
	}
}

func TestRunList(t *testing.T) {
	sync, _ := newTestPhonebook(t, nil)
	buf := captureOutput(t)

	if err := runList(sync, "ada", false); err != nil {
		t.Fatalf("runList: %v", err)
	}
	out := ansi.Strip(buf.String())
	if !strings.Contains(out, "Ada Lovelace") {
		t.Errorf("expected Ada in output:\n%s", out)
	}
	if strings.Contains(out, "Arto") {
		t.Errorf("filter did not apply:\n%s", out)
	}
}

func TestRunListJSON(t *testing.T) {
	sync, _ := newTestPhonebook(t, nil)
	buf := captureOutput(t)

	if err := runList(sync, "", true); err != nil {
		t.Fatalf("runList: %v", err)
	}
	var got []models.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(got) != 2 || got[0].Name != "Arto Hellas" || got[1].ID != "2" {
		t.Errorf("unexpected records %+v", got)
	}
}

func TestRunAddCreates(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(false))
	buf := captureOutput(t)

	if err := runAdd(context.Background(), sync, models.Draft{Name: "Dan Abramov", Number: "12-43-234345"}); err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	if !strings.Contains(buf.String(), "Added Dan Abramov") {
		t.Errorf("missing status, got %q", buf.String())
	}
	if len(srv.Records(t)) != 3 {
		t.Error("expected record on server")
	}
}

func TestRunAddDuplicate(t *testing.T) {
	sync, _ := newTestPhonebook(t, noTTY(false))
	buf := captureOutput(t)

	err := runAdd(context.Background(), sync, models.Draft{Name: "Arto Hellas", Number: "040-123456"})
	if !errors.Is(err, phonebook.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if !strings.Contains(buf.String(), "Arto Hellas is already added to phonebook") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRunAddReplaceWithYes(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(true))
	buf := captureOutput(t)

	if err := runAdd(context.Background(), sync, models.Draft{Name: "Arto Hellas", Number: "09-999"}); err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	if !strings.Contains(buf.String(), "Changed number of Arto Hellas") {
		t.Errorf("unexpected output %q", buf.String())
	}
	for _, r := range srv.Records(t) {
		if r.Name == "Arto Hellas" && r.Number != "09-999" {
			t.Errorf("server still has %q", r.Number)
		}
	}
}

func TestRunAddReplaceDeclinedWithoutTerminal(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(false))
	buf := captureOutput(t)

	if err := runAdd(context.Background(), sync, models.Draft{Name: "Arto Hellas", Number: "09-999"}); err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "use --yes") || !strings.Contains(out, "No changes made") {
		t.Errorf("unexpected output %q", out)
	}
	for _, r := range srv.Records(t) {
		if r.Name == "Arto Hellas" && r.Number != "040-123456" {
			t.Error("declined replace reached the server")
		}
	}
}

func TestRunAddReplaceStale(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(true))
	srv.DeleteOutOfBand(t, "1")
	buf := captureOutput(t)

	if err := runAdd(context.Background(), sync, models.Draft{Name: "Arto Hellas", Number: "09-999"}); err != nil {
		t.Fatalf("a record already gone is a settled outcome, got %v", err)
	}
	if !strings.Contains(buf.String(), "Information of Arto Hellas has already been removed from server") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if _, ok := sync.Lookup("Arto Hellas"); ok {
		t.Error("stale record still present")
	}
}

func TestRunDelete(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(true))
	buf := captureOutput(t)

	if err := runDelete(context.Background(), sync, []string{"arto hellas", "2"}); err != nil {
		t.Fatalf("runDelete: %v", err)
	}
	if len(srv.Records(t)) != 0 || len(sync.Records()) != 0 {
		t.Error("expected both records deleted")
	}
	out := buf.String()
	if !strings.Contains(out, "Deleted Arto Hellas") || !strings.Contains(out, "Deleted Ada Lovelace") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunDeleteUnknownContinues(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(true))
	buf := captureOutput(t)

	err := runDelete(context.Background(), sync, []string{"Arto Helas", "Ada Lovelace"})
	if !errors.Is(err, phonebook.ErrUnknownRecord) {
		t.Errorf("expected ErrUnknownRecord, got %v", err)
	}
	if !strings.Contains(buf.String(), "Did you mean: Arto Hellas?") {
		t.Errorf("expected suggestion, got %q", buf.String())
	}
	if len(srv.Records(t)) != 1 {
		t.Error("expected Ada deleted despite the earlier failure")
	}
}

func TestRunDeleteAlreadyRemoved(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(true))
	srv.DeleteOutOfBand(t, "2")
	buf := captureOutput(t)

	if err := runDelete(context.Background(), sync, []string{"Ada Lovelace"}); err != nil {
		t.Errorf("a record already gone is a settled outcome, got %v", err)
	}
	if _, ok := sync.Lookup("Ada Lovelace"); ok {
		t.Error("expected local removal")
	}
	if !strings.Contains(buf.String(), "already removed") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRunDeleteDeclined(t *testing.T) {
	sync, srv := newTestPhonebook(t, noTTY(false))
	buf := captureOutput(t)

	if err := runDelete(context.Background(), sync, []string{"Arto Hellas"}); err != nil {
		t.Fatalf("runDelete: %v", err)
	}
	if len(srv.Records(t)) != 2 {
		t.Error("declined delete reached the server")
	}
	if !strings.Contains(buf.String(), "Kept Arto Hellas") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPromptConfirmerAsksOnTerminal(t *testing.T) {
	var asked string
	p := &promptConfirmer{
		interactive: func() bool { return true },
		ask: func(_ context.Context, prompt string) (bool, error) {
			asked = prompt
			return true, nil
		},
	}
	ok, err := p.Confirm(context.Background(), "Delete Arto Hellas?")
	if err != nil || !ok {
		t.Fatalf("Confirm = %v, %v", ok, err)
	}
	if asked != "Delete Arto Hellas?" {
		t.Errorf("asked %q", asked)
	}
}

func TestSettingsFlagsOverride(t *testing.T) {
	isolateConfig(t)
	t.Setenv("PHONEBOOK_URL", "http://env:1")
	t.Setenv("PHONEBOOK_RESOURCE", "people")

	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd.Flags())
	if err := cmd.Flags().Set("server", "http://flag:2"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("timeout", "3s"); err != nil {
		t.Fatal(err)
	}

	s := settings(cmd)
	if s.ServerURL != "http://flag:2" {
		t.Errorf("ServerURL = %q, flag should win", s.ServerURL)
	}
	if s.Resource != "people" {
		t.Errorf("Resource = %q, env should apply", s.Resource)
	}
	if s.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", s.Timeout)
	}
	if s.StatusDelay != config.DefaultStatusDelay {
		t.Errorf("StatusDelay = %v", s.StatusDelay)
	}
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"debug", "json", false},
		{"info", "text", false},
		{"", "", false},
		{"loud", "text", true},
		{"warn", "xml", true},
	}
	for _, tc := range tests {
		cmd := &cobra.Command{Use: "test"}
		addGlobalFlags(cmd.Flags())
		cmd.Flags().Set("log-level", tc.level)
		cmd.Flags().Set("log-format", tc.format)

		var buf bytes.Buffer
		err := setupLogging(cmd, &buf)
		if (err != nil) != tc.wantErr {
			t.Errorf("level=%q format=%q: err=%v, wantErr=%v", tc.level, tc.format, err, tc.wantErr)
		}
	}

	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd.Flags())
	cmd.Flags().Set("log-level", "debug")
	cmd.Flags().Set("log-format", "json")
	var buf bytes.Buffer
	if err := setupLogging(cmd, &buf); err != nil {
		t.Fatal(err)
	}
	slog.Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected json debug line, got %q", buf.String())
	}
}

func TestOpenLogSink(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("log-file", "", "")

	w, err := openLogSink(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("discard sink Close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ui.log")
	cmd.Flags().Set("log-file", path)
	w, err = openLogSink(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("line\n")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := w.Write([]byte("late\n")); err == nil {
		t.Error("expected write after Close to fail")
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "line\n" {
		t.Errorf("log file = %q, %v", data, err)
	}
}

func TestRunCoursesDefault(t *testing.T) {
	buf := captureOutput(t)
	if err := runCourses("", false); err != nil {
		t.Fatalf("runCourses: %v", err)
	}
	out := ansi.Strip(buf.String())
	for _, want := range []string{"Half Stack application development", "total of 42 exercises", "Node.js", "total of 10 exercises"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCoursesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	data := `
[[courses]]
id = 1
name = "Go"

[[courses.parts]]
id = 1
name = "Basics"
exercises = 7
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	buf := captureOutput(t)
	if err := runCourses(path, true); err != nil {
		t.Fatalf("runCourses: %v", err)
	}
	var got []models.Course
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].Total() != 7 {
		t.Errorf("unexpected courses %+v", got)
	}

	captureOutput(t)
	if err := runCourses(filepath.Join(t.TempDir(), "missing.toml"), false); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigCommands(t *testing.T) {
	isolateConfig(t)
	buf := captureOutput(t)

	if err := runConfigSet("server_url", "http://example:9"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := runConfigSet("api_key", "secret-token"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := runConfigSet("timeout", "soon"); err == nil {
		t.Error("expected invalid duration error")
	}
	if err := runConfigSet("colour", "blue"); err == nil {
		t.Error("expected unknown key error")
	}

	buf.Reset()
	if err := runConfigGet("server_url"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "http://example:9" {
		t.Errorf("get = %q", buf.String())
	}

	buf.Reset()
	if err := runConfigList(); err != nil {
		t.Fatalf("list: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Error("api key printed in clear")
	}
	for _, want := range []string{"api_key = secr****", "resource = persons (default)", "status_delay = 2s (default)"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}
}
