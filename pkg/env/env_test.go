package env

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestTypedGetters(t *testing.T) {
	t.Setenv("DECA_TEST_STR", "value")
	t.Setenv("DECA_TEST_INT", "42")
	t.Setenv("DECA_TEST_BAD_INT", "forty-two")
	t.Setenv("DECA_TEST_BOOL", "false")
	t.Setenv("DECA_TEST_DURATION", "1500ms")
	t.Setenv("DECA_TEST_LIST", " a:1 , b:2 ,")

	if got := Str("DECA_TEST_STR", "x"); got != "value" {
		t.Errorf("Str() = %q, want %q", got, "value")
	}
	if got := Str("DECA_TEST_UNSET", "x"); got != "x" {
		t.Errorf("Str(unset) = %q, want %q", got, "x")
	}
	if got := Int("DECA_TEST_INT", 1); got != 42 {
		t.Errorf("Int() = %d, want 42", got)
	}
	if got := Int("DECA_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("Int(bad) = %d, want fallback 7", got)
	}
	if got := Int64("DECA_TEST_INT", 1); got != 42 {
		t.Errorf("Int64() = %d, want 42", got)
	}
	if got := Bool("DECA_TEST_BOOL", true); got != false {
		t.Errorf("Bool() = %v, want false", got)
	}
	if got := Duration("DECA_TEST_DURATION", time.Second); got != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", got)
	}
	if got, want := List("DECA_TEST_LIST", ""), []string{"a:1", "b:2", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %q, want %q", got, want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("DECA_DOTENV_NEW=from-file\nDECA_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DECA_DOTENV_SET", "from-env")
	t.Cleanup(func() { os.Unsetenv("DECA_DOTENV_NEW") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("DECA_DOTENV_NEW"); got != "from-file" {
		t.Errorf("DECA_DOTENV_NEW = %q, want %q", got, "from-file")
	}
	if got := os.Getenv("DECA_DOTENV_SET"); got != "from-env" {
		t.Errorf("DECA_DOTENV_SET = %q, want existing value kept", got)
	}
}
