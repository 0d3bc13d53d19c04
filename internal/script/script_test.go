package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyBasicTransform(t *testing.T) {
	tr, err := Compile("upcase", `function transform(text) return string.upper(text) end`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := tr.Apply("hello")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "HELLO" {
		t.Errorf("Apply = %q", got)
	}
}

func TestApplyMultiLine(t *testing.T) {
	src := `
function transform(text)
	local out = {}
	for line in string.gmatch(text, "([^\n]*)\n?") do
		if line ~= "" then table.insert(out, "> " .. line) end
	end
	return table.concat(out, "\n")
end`
	tr, err := Compile("quote", src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := tr.Apply("a\nb")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != "> a\n> b" {
		t.Errorf("Apply = %q", got)
	}
}

func TestCompileRejectsSyntaxError(t *testing.T) {
	if _, err := Compile("bad", `function transform(`); err == nil {
		t.Error("syntax error compiled")
	}
}

func TestMissingTransformFunction(t *testing.T) {
	tr, err := Compile("empty", `local x = 1`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := tr.Apply("text"); !errors.Is(err, ErrNoTransform) {
		t.Errorf("Apply = %v, want ErrNoTransform", err)
	}
}

func TestNonStringResult(t *testing.T) {
	tr, err := Compile("num", `function transform(text) return 42 end`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := tr.Apply("text"); !errors.Is(err, ErrBadResult) {
		t.Errorf("Apply = %v, want ErrBadResult", err)
	}
}

func TestRuntimeErrorIsReported(t *testing.T) {
	tr, err := Compile("boom", `function transform(text) error("boom") end`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := tr.Apply("text"); err == nil {
		t.Error("runtime error not reported")
	}
}

func TestFilesystemIsUnreachable(t *testing.T) {
	scripts := []string{
		`function transform(text) return io.open("/etc/hostname"):read("*a") end`,
		`function transform(text) return os.getenv("HOME") end`,
		`function transform(text) return dofile("/tmp/x.lua") end`,
	}
	for _, src := range scripts {
		tr, err := Compile("escape", src)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if _, err := tr.Apply("text"); err == nil {
			t.Errorf("script escaped the sandbox: %s", src)
		}
	}
}

func TestInfiniteLoopTimesOut(t *testing.T) {
	tr, err := Compile("spin", `function transform(text) while true do end end`,
		WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	start := time.Now()
	if _, err := tr.Apply("text"); err == nil {
		t.Error("infinite loop completed")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout did not bound execution")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b_lower.lua"),
		[]byte(`function transform(text) return string.lower(text) end`), 0o644)
	os.WriteFile(filepath.Join(dir, "a_upper.lua"),
		[]byte(`function transform(text) return string.upper(text) end`), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	transforms, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(transforms) != 2 {
		t.Fatalf("loaded %d transforms, want 2", len(transforms))
	}
	if transforms[0].Name != "a_upper" || transforms[1].Name != "b_lower" {
		t.Errorf("order = %s, %s", transforms[0].Name, transforms[1].Name)
	}
}

func TestLoadDirMissing(t *testing.T) {
	transforms, err := LoadDir(filepath.Join(t.TempDir(), "none"))
	if err != nil || transforms != nil {
		t.Errorf("LoadDir missing dir = %v, %v", transforms, err)
	}
}
