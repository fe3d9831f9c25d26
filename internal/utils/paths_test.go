package utils

import "testing"

func TestConvertPath_HostToContainer(t *testing.T) {
	ok, converted := ConvertPath("/storage/runs/Run042", "/storage", "/inpred/data")
	if !ok {
		t.Fatalf("Expected conversion to succeed")
	}
	if converted != "/inpred/data/runs/Run042" {
		t.Errorf("Expected /inpred/data/runs/Run042, got %s", converted)
	}
}

func TestConvertPath_ContainerToHost(t *testing.T) {
	ok, converted := ConvertPath("/inpred/data/runs/Run042", "/inpred/data", "/storage")
	if !ok {
		t.Fatalf("Expected conversion to succeed")
	}
	if converted != "/storage/runs/Run042" {
		t.Errorf("Expected /storage/runs/Run042, got %s", converted)
	}
}

func TestConvertPath_MissingPrefix(t *testing.T) {
	ok, converted := ConvertPath("/other/runs/Run042", "/storage", "/inpred/data")
	if ok {
		t.Errorf("Expected conversion to fail for a path outside the prefix")
	}
	if converted != "" {
		t.Errorf("Expected empty result on failure, got %s", converted)
	}
}

func TestStripPathPrefix(t *testing.T) {
	ok, stripped := StripPathPrefix("/storage/runs", "/storage")
	if !ok || stripped != "/runs" {
		t.Errorf("Expected (true, /runs), got (%t, %s)", ok, stripped)
	}

	if ok, _ := StripPathPrefix("/other/runs", "/storage"); ok {
		t.Errorf("Expected failure for a path without the prefix")
	}
}

func TestIsValidOutputPrefix(t *testing.T) {
	valid := []string{"run_042", "2024_01_15___10_30_00", "A1"}
	for _, prefix := range valid {
		if !IsValidOutputPrefix(prefix) {
			t.Errorf("Expected %q to be a valid prefix", prefix)
		}
	}

	invalid := []string{"", "run 042", "run-042", "run/042", "run.042"}
	for _, prefix := range invalid {
		if IsValidOutputPrefix(prefix) {
			t.Errorf("Expected %q to be rejected", prefix)
		}
	}
}

func TestForbiddenPrefixChars(t *testing.T) {
	if got := ForbiddenPrefixChars("ru n-04.2"); got != " -." {
		t.Errorf("Expected \" -.\", got %q", got)
	}
}
