package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idilsaglam/shoplist/internal/ui"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	oldOut, oldErr := ui.Stdout, ui.Stderr
	ui.Stdout, ui.Stderr = &outBuf, &errBuf
	defer func() { ui.Stdout, ui.Stderr = oldOut, oldErr }()

	code = Run(args)
	return outBuf.String(), errBuf.String(), code
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := runCLI(t, args...)
	if code != 0 {
		t.Fatalf("shoplist %v exited %d\nstderr:\n%s\nstdout:\n%s", args, code, errOut, out)
	}
	return out
}

func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"SHOPLIST_DIR", "SHOPLIST_BACKEND", "SHOPLIST_LOG", "SHOPLIST_BASE_URL", "SHOPLIST_CODE_LENGTH", "SHOPLIST_THEME"} {
		t.Setenv(k, "")
	}
	return t.TempDir()
}

func currentCode(t *testing.T, dir string, extra ...string) string {
	t.Helper()
	out := mustRun(t, append([]string{"--dir", dir, "code"}, extra...)...)
	return strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
}

func TestNewAddCheckLs(t *testing.T) {
	dir := isolate(t)

	out := mustRun(t, "--dir", dir, "new")
	if !strings.Contains(out, "created list ") {
		t.Fatalf("unexpected new output: %q", out)
	}
	code := currentCode(t, dir)
	if len(code) != 5 {
		t.Fatalf("expected a 5 character code, got %q", code)
	}

	mustRun(t, "--dir", dir, "add", "1", "Milk", "--price", "2.5", "--qty", "2")
	mustRun(t, "--dir", dir, "add", "3", "Agua", "con", "gas", "--price", "0.30")

	ls := mustRun(t, "--dir", dir, "ls")
	for _, want := range []string{code, "Milk", "2 × $2.50", "$5.00", "Agua con gas", "$5.30", "Lácteos"} {
		if !strings.Contains(ls, want) {
			t.Fatalf("ls output missing %q:\n%s", want, ls)
		}
	}

	out = mustRun(t, "--dir", dir, "check", "1", "1")
	if !strings.Contains(out, "checked Milk") {
		t.Fatalf("unexpected check output: %q", out)
	}
	ls = mustRun(t, "--dir", dir, "ls", "--hide-empty")
	if !strings.Contains(ls, "Total $0.30") {
		t.Fatalf("checked items should leave the total:\n%s", ls)
	}
	if strings.Contains(ls, "Panadería") {
		t.Fatalf("--hide-empty should skip empty categories:\n%s", ls)
	}

	mustRun(t, "--dir", dir, "rm", "1", "1")
	ls = mustRun(t, "--dir", dir, "ls")
	if strings.Contains(ls, "Milk") {
		t.Fatalf("rm did not remove the item:\n%s", ls)
	}
}

func TestCategoryCommands(t *testing.T) {
	dir := isolate(t)
	mustRun(t, "--dir", dir, "new")

	out := mustRun(t, "--dir", dir, "category", "add", "Limpieza", "hogar")
	if !strings.Contains(out, "added category 9") {
		t.Fatalf("unexpected output %q", out)
	}
	mustRun(t, "--dir", dir, "category", "rename", "9", "Limpieza")
	mustRun(t, "--dir", dir, "add", "9", "Lejía", "--price", "1.95")
	ls := mustRun(t, "--dir", dir, "ls")
	if !strings.Contains(ls, "Limpieza") || strings.Contains(ls, "Limpieza hogar") || !strings.Contains(ls, "Lejía") {
		t.Fatalf("unexpected ls:\n%s", ls)
	}
}

func TestUsageAndValidationExitCodes(t *testing.T) {
	dir := isolate(t)
	mustRun(t, "--dir", dir, "new")

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"missing args", []string{"add"}, 2},
		{"category not a number", []string{"add", "x", "Milk"}, 2},
		{"item out of range", []string{"check", "1", "9"}, 2},
		{"category out of range", []string{"add", "99", "Milk"}, 2},
		{"blank name", []string{"category", "add", " "}, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"unknown flag", []string{"ls", "--nope"}, 2},
		{"bad backend", []string{"--backend", "redis", "ls"}, 2},
		{"bad code", []string{"connect", "no-way"}, 2},
		{"blank code", []string{"connect", " "}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, errOut, code := runCLI(t, append([]string{"--dir", dir}, tc.args...)...)
			if code != tc.want {
				t.Fatalf("exit %d, want %d\nstderr:\n%s", code, tc.want, errOut)
			}
			if errOut == "" {
				t.Fatalf("expected a message on stderr")
			}
		})
	}

	_, errOut, _ := runCLI(t, "--dir", dir, "check", "1", "9")
	if !strings.Contains(errOut, "shoplist ls") {
		t.Fatalf("expected an index hint, got:\n%s", errOut)
	}
}

func TestNoListYet(t *testing.T) {
	dir := isolate(t)
	_, errOut, code := runCLI(t, "--dir", dir, "ls")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(errOut, "shoplist new") {
		t.Fatalf("expected a hint, got:\n%s", errOut)
	}
}

func TestConnectNormalisesCode(t *testing.T) {
	dir := isolate(t)
	out := mustRun(t, "--dir", dir, "connect", "  ab12c ")
	if !strings.Contains(out, "connected to AB12C") {
		t.Fatalf("unexpected output %q", out)
	}
	mustRun(t, "--dir", dir, "add", "1", "Yogur")

	// --code reaches the same list without changing the default one.
	mustRun(t, "--dir", dir, "new")
	ls := mustRun(t, "--dir", dir, "--code", "AB12C", "ls")
	if !strings.Contains(ls, "Yogur") {
		t.Fatalf("--code did not open AB12C:\n%s", ls)
	}
}

func TestShareOpenAcrossDevices(t *testing.T) {
	phone, laptop := isolate(t), t.TempDir()
	mustRun(t, "--dir", phone, "new")
	mustRun(t, "--dir", phone, "add", "2", "Baguette", "--price", "1.35", "--qty", "2")

	for _, flags := range [][]string{nil, {"--fragment"}} {
		out := mustRun(t, append([]string{"--dir", phone, "share"}, flags...)...)
		link := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
		if !strings.HasPrefix(link, "https://shoplist.app/") {
			t.Fatalf("unexpected link %q", link)
		}

		out = mustRun(t, "--dir", laptop, "open", link)
		if !strings.Contains(out, "opened payload list as ") {
			t.Fatalf("unexpected open output %q", out)
		}
		ls := mustRun(t, "--dir", laptop, "ls")
		if !strings.Contains(ls, "Baguette") || !strings.Contains(ls, "$2.70") {
			t.Fatalf("shared list not opened:\n%s", ls)
		}
	}
	if currentCode(t, laptop) == currentCode(t, phone) {
		t.Fatalf("an opened list should get its own code")
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	dir := isolate(t)
	_, _, code := runCLI(t, "--dir", dir, "open", "https://shoplist.app/?list=%21%21%21")
	if code != 2 {
		t.Fatalf("exit %d, want 2", code)
	}
}

func TestShareQRAndCopy(t *testing.T) {
	dir := isolate(t)
	mustRun(t, "--dir", dir, "new")

	old := copyText
	defer func() { copyText = old }()
	var copied string
	copyText = func(s string) error { copied = s; return nil }

	out := mustRun(t, "--dir", dir, "share", "--qr", "--copy")
	if !strings.Contains(out, "api.qrserver.com/v1/create-qr-code/?size=250x250&data=") {
		t.Fatalf("missing qr url:\n%s", out)
	}
	if copied == "" || !strings.Contains(out, copied) {
		t.Fatalf("copied %q, printed:\n%s", copied, out)
	}

	copyText = func(string) error { return errors.New("no display") }
	_, errOut, code := runCLI(t, "--dir", dir, "share", "--copy")
	if code != 0 || !strings.Contains(errOut, "could not copy") {
		t.Fatalf("copy failure should only warn: exit %d\n%s", code, errOut)
	}
}

func TestExportImport(t *testing.T) {
	src, dst := isolate(t), t.TempDir()
	mustRun(t, "--dir", src, "new")
	mustRun(t, "--dir", src, "add", "5", "Merluza", "--price", "8.90", "--qty", "1")

	file := filepath.Join(t.TempDir(), "list.json")
	mustRun(t, "--dir", src, "export", "-o", file)
	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"categories\"") {
		t.Fatalf("export should be indented:\n%s", b)
	}

	// No list yet: import adopts under a new code.
	mustRun(t, "--dir", dst, "import", file)
	if ls := mustRun(t, "--dir", dst, "ls"); !strings.Contains(ls, "Merluza") {
		t.Fatalf("import did not land:\n%s", ls)
	}

	// Existing list: import replaces in place and keeps the code.
	code := currentCode(t, dst)
	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(empty, []byte(`{"categories":[{"name":"Otros","items":[]}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	mustRun(t, "--dir", dst, "import", empty)
	if got := currentCode(t, dst); got != code {
		t.Fatalf("import changed the code: %s -> %s", code, got)
	}
	if ls := mustRun(t, "--dir", dst, "ls"); strings.Contains(ls, "Merluza") {
		t.Fatalf("import did not replace:\n%s", ls)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"items":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, code := runCLI(t, "--dir", dst, "import", bad); code != 2 {
		t.Fatalf("bad import exit %d, want 2", code)
	}
}

func TestListsAndClose(t *testing.T) {
	dir := isolate(t)
	mustRun(t, "--dir", dir, "new")
	first := currentCode(t, dir)
	mustRun(t, "--dir", dir, "new")
	second := currentCode(t, dir)

	out := mustRun(t, "--dir", dir, "lists")
	if !strings.Contains(out, "  "+first) || !strings.Contains(out, "* "+second) {
		t.Fatalf("unexpected lists output:\n%s", out)
	}

	mustRun(t, "--dir", dir, "close")
	if _, _, code := runCLI(t, "--dir", dir, "ls"); code != 1 {
		t.Fatalf("ls after close should fail, exit %d", code)
	}
	if out := mustRun(t, "--dir", dir, "lists"); !strings.Contains(out, first) {
		t.Fatalf("close should keep stored lists:\n%s", out)
	}
}

func TestListsDoesNotRecreateMissingList(t *testing.T) {
	dir := isolate(t)
	mustRun(t, "--dir", dir, "new")
	code := currentCode(t, dir)
	if err := os.Remove(filepath.Join(dir, "lists", "shoplist_list_"+code+".json")); err != nil {
		t.Fatalf("remove stored list: %v", err)
	}

	if out := mustRun(t, "--dir", dir, "lists"); !strings.Contains(out, "no lists yet") {
		t.Fatalf("expected no lists, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "lists", "shoplist_list_"+code+".json")); !os.IsNotExist(err) {
		t.Fatalf("lists should not write the remembered list back, stat err=%v", err)
	}
}

func TestConnectBlankCodeKeepsCurrentList(t *testing.T) {
	dir := isolate(t)
	mustRun(t, "--dir", dir, "new")
	before := currentCode(t, dir)

	_, errOut, code := runCLI(t, "--dir", dir, "connect", "   ")
	if code != 2 || !strings.Contains(errOut, "code") {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	if after := currentCode(t, dir); after != before {
		t.Fatalf("current list changed from %s to %s", before, after)
	}
}

func TestSQLiteBackend(t *testing.T) {
	dir := isolate(t)
	mustRun(t, "--dir", dir, "--backend", "sqlite", "new")
	mustRun(t, "--dir", dir, "--backend", "sqlite", "add", "1", "Queso", "--price", "3.20")
	ls := mustRun(t, "--dir", dir, "--backend", "sqlite", "ls")
	if !strings.Contains(ls, "Queso") {
		t.Fatalf("sqlite backend lost the item:\n%s", ls)
	}
	if _, err := os.Stat(filepath.Join(dir, "shoplist.sqlite")); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestConfigFileBackend(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: sqlite\ncode_length: 6\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	mustRun(t, "--dir", dir, "new")
	if code := currentCode(t, dir); len(code) != 6 {
		t.Fatalf("code_length from config.yaml ignored: %q", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "shoplist.sqlite")); err != nil {
		t.Fatalf("backend from config.yaml ignored: %v", err)
	}
}
