package catalog

import (
	"strings"
	"testing"
)

func TestValidate_SeedCatalog(t *testing.T) {
	if err := validateModules(SeedModules()); err != nil {
		t.Fatalf("seed catalog failed validation: %v", err)
	}
}

func TestValidate_DetectsCycle(t *testing.T) {
	modules := []Module{
		{ID: "root", Name: "Root"},
		{ID: "a", Name: "A", Dependencies: []string{"root", "b"}},
		{ID: "b", Name: "B", Dependencies: []string{"a"}},
	}
	err := validateModules(modules)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got: %v", err)
	}
}

func TestValidate_DetectsDanglingDependency(t *testing.T) {
	modules := []Module{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", Dependencies: []string{"missing"}},
	}
	err := validateModules(modules)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "nonexistent dependency") {
		t.Errorf("expected dangling dependency error, got: %v", err)
	}
}

func TestValidate_DetectsDuplicateID(t *testing.T) {
	modules := []Module{
		{ID: "a", Name: "A"},
		{ID: "a", Name: "A again"},
	}
	err := validateModules(modules)
	if err == nil || !strings.Contains(err.Error(), "duplicate module ID") {
		t.Errorf("expected duplicate ID error, got: %v", err)
	}
}

func TestValidate_DetectsSelfDependency(t *testing.T) {
	modules := []Module{
		{ID: "root", Name: "Root"},
		{ID: "a", Name: "A", Dependencies: []string{"a"}},
	}
	err := validateModules(modules)
	if err == nil || !strings.Contains(err.Error(), "depends on itself") {
		t.Errorf("expected self-dependency error, got: %v", err)
	}
}

func TestValidate_RequiresSeed(t *testing.T) {
	modules := []Module{
		{ID: "a", Name: "A", Dependencies: []string{"b"}},
		{ID: "b", Name: "B", Dependencies: []string{"a"}},
	}
	err := validateModules(modules)
	if err == nil || !strings.Contains(err.Error(), "no seed modules") {
		t.Errorf("expected missing seed error, got: %v", err)
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	modules := []Module{{ID: "a", Name: "A", PassThreshold: 120}}
	err := validateModules(modules)
	if err == nil || !strings.Contains(err.Error(), "pass threshold") {
		t.Errorf("expected threshold error, got: %v", err)
	}
}

func TestNew_ReportsAllProblems(t *testing.T) {
	_, err := New([]Module{
		{ID: "a", Name: "", PassThreshold: -1},
		{ID: "b", Name: "B", Dependencies: []string{"zzz"}},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"empty name", "pass threshold", "nonexistent dependency"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error missing %q: %s", want, msg)
		}
	}
}
