package process

import (
	"bytes"
	"os/exec"
	"reflect"
	"testing"
	"time"

	"proctl/core/waitstat"
)

func TestSplitCommandLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want []string
	}{
		{name: "empty", line: "", want: nil},
		{name: "blank", line: "   \t ", want: nil},
		{name: "plain", line: "echo hello world", want: []string{"echo", "hello", "world"}},
		{name: "collapsed spaces", line: "a   b\t\tc", want: []string{"a", "b", "c"}},
		{name: "quoted", line: `sh -c "exit 28"`, want: []string{"sh", "-c", "exit 28"}},
		{name: "empty quoted arg", line: `prog "" tail`, want: []string{"prog", "", "tail"}},
		{name: "escaped quote", line: `say "a \" b"`, want: []string{"say", `a " b`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitCommandLine(tc.line)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitCommandLine(%q) = %#v, want %#v", tc.line, got, tc.want)
			}
		})
	}
}

func TestWideBridge(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "ascii", text: "/bin/sh -c true"},
		{name: "non-ascii", text: "обработчик задач"},
		{name: "astral", text: "run 𝓽𝓪𝓼𝓴"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecodeWide(EncodeWide(tc.text)); got != tc.text {
				t.Fatalf("round trip = %q, want %q", got, tc.text)
			}
		})
	}
	// A trailing NUL, common in native wide buffers, is dropped.
	if got := DecodeWide(append(EncodeWide("sh"), 0)); got != "sh" {
		t.Fatalf("NUL-terminated decode = %q, want %q", got, "sh")
	}
}

func TestSpawnEmptyInputs(t *testing.T) {
	if p := Spawn("", nil, SpawnOptions{}); p.Valid() {
		t.Fatal("Spawn with no program and no argv produced a handle")
	}
	if p := SpawnLine("", "", SpawnOptions{}); p.Valid() {
		t.Fatal("SpawnLine with nothing to run produced a handle")
	}
	if p := SpawnLine("", "   ", SpawnOptions{}); p.Valid() {
		t.Fatal("SpawnLine with a blank line produced a handle")
	}
	if p := Spawn("/no/such/binary-xyz", nil, SpawnOptions{}); p.Valid() {
		t.Fatal("Spawn of a missing binary produced a handle")
	}
}

func TestSpawnLineProgramOnly(t *testing.T) {
	requireShell(t)

	// Empty command line with a program: the program runs bare.
	p := SpawnLine("/bin/true", "", SpawnOptions{})
	if !p.Valid() {
		t.Skip("missing /bin/true")
	}
	defer p.Reset()
	if st := p.Wait(); st != waitstat.Signaled {
		t.Fatalf("Wait = %v, want signaled", st)
	}
	if code, ok := p.TryExitCode(); !ok || code != 0 {
		t.Fatalf("TryExitCode = (%d, %v), want (0, true)", code, ok)
	}
}

func TestSpawnLineResolvesProgramFromLine(t *testing.T) {
	requireShell(t)

	var out bytes.Buffer
	p := SpawnLine("", `/bin/sh -c "echo from-line"`, SpawnOptions{Stdout: &out})
	if !p.Valid() {
		t.Fatal("SpawnLine returned empty handle")
	}
	defer p.Reset()
	if st := p.Wait(); st != waitstat.Signaled {
		t.Fatalf("Wait = %v, want signaled", st)
	}
	if got := out.String(); got != "from-line\n" {
		t.Fatalf("stdout = %q", got)
	}
}

func TestSpawnWide(t *testing.T) {
	requireShell(t)

	p := SpawnWide(EncodeWide("/bin/sh"), EncodeWide(`sh -c "exit 28"`), SpawnOptions{})
	if !p.Valid() {
		t.Fatal("SpawnWide returned empty handle")
	}
	defer p.Reset()
	if st := p.Wait(); st != waitstat.Signaled {
		t.Fatalf("Wait = %v, want signaled", st)
	}
	if code, ok := p.TryExitCode(); !ok || code != 28 {
		t.Fatalf("TryExitCode = (%d, %v), want (28, true)", code, ok)
	}
}

func TestFromCmdRejectsUnstarted(t *testing.T) {
	if p := FromCmd(nil); p.Valid() {
		t.Fatal("FromCmd(nil) produced a handle")
	}
	if p := FromCmd(exec.Command("/bin/true")); p.Valid() {
		t.Fatal("FromCmd of an unstarted command produced a handle")
	}
}

func TestSpawnStartSuspended(t *testing.T) {
	requireShell(t)

	p := Spawn("/bin/sh", []string{"sh", "-c", "sleep 0.1"}, SpawnOptions{
		StartSuspended: true,
	})
	if !p.Valid() {
		t.Fatal("Spawn returned empty handle")
	}
	defer p.Reset()

	// Stopped well before its sleep elapses, the child outlives a wait that
	// is longer than the sleep itself.
	if st := p.WaitFor(400 * time.Millisecond); st != waitstat.TimedOut {
		t.Fatalf("WaitFor on a suspended child = %v, want timed-out", st)
	}
	if !p.Resume() {
		t.Fatal("Resume failed")
	}
	if st := p.Wait(); st != waitstat.Signaled {
		t.Fatalf("Wait after Resume = %v, want signaled", st)
	}
}

func TestSpawnNewSession(t *testing.T) {
	requireShell(t)

	// In a fresh session the child is its own session leader.
	var out bytes.Buffer
	p := Spawn("/bin/sh", []string{"sh", "-c", "ps -o sid= -p $$"}, SpawnOptions{
		Stdout:     &out,
		NewSession: true,
	})
	if !p.Valid() {
		t.Fatal("Spawn returned empty handle")
	}
	defer p.Reset()
	if st := p.Wait(); st != waitstat.Signaled {
		t.Fatalf("Wait = %v, want signaled", st)
	}
	if code, ok := p.TryExitCode(); !ok || code != 0 {
		t.Skipf("ps unavailable (exit %d)", code)
	}
}
