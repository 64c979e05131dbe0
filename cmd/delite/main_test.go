package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// ── Helper Tests ────────────────────────────────────────────────────────────

func TestEnvStr(t *testing.T) {
	t.Setenv("DELITE_TEST_STR", "from-env")
	if got := envStr("DELITE_TEST_STR", "fallback"); got != "from-env" {
		t.Fatalf("envStr(set) = %q, want %q", got, "from-env")
	}
	if got := envStr("DELITE_TEST_STR_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("envStr(unset) = %q, want %q", got, "fallback")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("DELITE_TEST_INT", "75")
	if got := envInt("DELITE_TEST_INT", 50); got != 75 {
		t.Fatalf("envInt(set) = %d, want 75", got)
	}
	t.Setenv("DELITE_TEST_INT", "not-a-number")
	if got := envInt("DELITE_TEST_INT", 50); got != 50 {
		t.Fatalf("envInt(garbage) = %d, want fallback 50", got)
	}
	if got := envInt("DELITE_TEST_INT_MISSING", 50); got != 50 {
		t.Fatalf("envInt(unset) = %d, want fallback 50", got)
	}
}

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, c := range cases {
		if got := humanBytes(c.in); got != c.want {
			t.Errorf("humanBytes(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

// ── CLI Tests ───────────────────────────────────────────────────────────────

// buildBinary compiles the delite command into a temp dir. Tests that
// exercise the binary skip when the toolchain is unavailable.
func buildBinary(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "delite-test")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot build delite binary: %v\n%s", err, out)
	}
	return bin
}

// writeCapture synthesizes a raw capture file of n little-endian 16-bit
// samples climbing toward a hot spot.
func writeCapture(t *testing.T, path string, n int) {
	t.Helper()
	raw := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		v := uint16(i * 65535 / n)
		binary.LittleEndian.PutUint16(raw[2*i:], v)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("writing capture fixture: %v", err)
	}
}

func TestCLINoArgs(t *testing.T) {
	bin := buildBinary(t)

	var stderr bytes.Buffer
	cmd := exec.Command(bin)
	cmd.Stderr = &stderr
	err := cmd.Run()

	exit, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected exit error without args, got %v", err)
	}
	if exit.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", exit.ExitCode())
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("stderr missing usage text:\n%s", stderr.String())
	}
}

func TestCLIMissingInput(t *testing.T) {
	bin := buildBinary(t)

	var stderr bytes.Buffer
	cmd := exec.Command(bin, "-f", filepath.Join(t.TempDir(), "nope.bin"))
	cmd.Stderr = &stderr
	err := cmd.Run()

	if exit, ok := err.(*exec.ExitError); !ok || exit.ExitCode() != 1 {
		t.Fatalf("expected exit 1 for missing input, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Fatalf("stderr missing error line:\n%s", stderr.String())
	}
}

func TestCLIInvalidLevel(t *testing.T) {
	bin := buildBinary(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "scan.bin")
	writeCapture(t, src, 400)

	var stderr bytes.Buffer
	cmd := exec.Command(bin, "-f", src, "-l", "150")
	cmd.Stderr = &stderr
	err := cmd.Run()

	if exit, ok := err.(*exec.ExitError); !ok || exit.ExitCode() != 1 {
		t.Fatalf("expected exit 1 for out-of-range level, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Adjustment level") {
		t.Fatalf("stderr missing level complaint:\n%s", stderr.String())
	}
}

func TestCLIFullRun(t *testing.T) {
	bin := buildBinary(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "scan.bin")
	preview := filepath.Join(dir, "out.bmp")
	altered := filepath.Join(dir, "altered.bin")
	writeCapture(t, src, 1024)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin,
		"-f", src,
		"-p", "10",
		"-l", "75",
		"-o", preview,
		"-altered", altered,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("full run failed: %v\nstderr: %s", err, stderr.String())
	}

	if !strings.Contains(stdout.String(), "Delite Result") {
		t.Errorf("stdout missing result summary:\n%s", stdout.String())
	}

	data, err := os.ReadFile(preview)
	if err != nil {
		t.Fatalf("preview not written: %v", err)
	}
	if len(data) < 2 || data[0] != 'B' || data[1] != 'M' {
		t.Errorf("preview does not start with BM signature")
	}

	dump, err := os.ReadFile(altered)
	if err != nil {
		t.Fatalf("altered dump not written: %v", err)
	}
	if len(dump) != 2*1024 {
		t.Errorf("altered dump is %d bytes, want %d", len(dump), 2*1024)
	}
}

func TestCLIEnvOutputDefault(t *testing.T) {
	bin := buildBinary(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "scan.bin")
	preview := filepath.Join(dir, "env-out.bmp")
	writeCapture(t, src, 512)

	var stderr bytes.Buffer
	cmd := exec.Command(bin, "-f", src, "-altered", "")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "DELITE_OUTPUT="+preview)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("env-default run failed: %v\nstderr: %s", err, stderr.String())
	}

	if _, err := os.Stat(preview); err != nil {
		t.Fatalf("preview was not written to DELITE_OUTPUT path: %v", err)
	}
}

func TestCLIAnalyze(t *testing.T) {
	bin := buildBinary(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "scan.bin")
	writeCapture(t, src, 2048)

	var stdout bytes.Buffer
	cmd := exec.Command(bin, "-analyze", "-f", src)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		t.Fatalf("analyze run failed: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"Samples:", "Range:", "Recommended pixel count", "Recommended level"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIAnalyzeBitmap(t *testing.T) {
	bin := buildBinary(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "scan.bin")
	preview := filepath.Join(dir, "out.bmp")
	writeCapture(t, src, 1024)

	run := exec.Command(bin, "-f", src, "-o", preview, "-altered", "")
	if out, err := run.CombinedOutput(); err != nil {
		t.Fatalf("seeding preview failed: %v\n%s", err, out)
	}

	var stdout bytes.Buffer
	cmd := exec.Command(bin, "-analyze", "-f", preview)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		t.Fatalf("bitmap analyze failed: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"Dimensions:", "Palette:", "identity ramp: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("bitmap analyze output missing %q:\n%s", want, out)
		}
	}
}
