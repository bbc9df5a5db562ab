package modules

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadStepDescriptor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, StepDescriptorFile), `
[scan]
name = "scanCore"
enabled = false
outputs = ["build/api/core.txt"]
`)

	step, err := LoadStepDescriptor(dir)
	if err != nil {
		t.Fatalf("LoadStepDescriptor failed: %v", err)
	}
	if step == nil {
		t.Fatal("expected a scan step")
	}
	if step.Name != "scanCore" || step.Enabled || len(step.Outputs) != 1 {
		t.Errorf("step = %+v", step)
	}
}

func TestLoadStepDescriptor_Absent(t *testing.T) {
	step, err := LoadStepDescriptor(t.TempDir())
	if err != nil || step != nil {
		t.Errorf("LoadStepDescriptor(empty dir) = %v, %v; want nil, nil", step, err)
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, StepDescriptorFile), "# nothing to scan here\n")
	step, err = LoadStepDescriptor(dir)
	if err != nil || step != nil {
		t.Errorf("LoadStepDescriptor(no [scan]) = %v, %v; want nil, nil", step, err)
	}
}

func TestLoadStepDescriptor_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, StepDescriptorFile), `
[scan]
outputs = ["api.txt"]
exclude = ["internal"]
`)

	_, err := LoadStepDescriptor(dir)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "scan.exclude") {
		t.Errorf("error %q should name scan.exclude", err)
	}
}

func TestLoadStepDescriptor_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, StepDescriptorFile), "[scan\n")

	if _, err := LoadStepDescriptor(dir); err == nil {
		t.Fatal("expected parse error")
	}
}
