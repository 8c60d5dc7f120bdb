package manifest

import (
	"testing"
)

func TestValidateFile_ValidManifests(t *testing.T) {
	validFiles := []string{
		"valid-inline.component-type.yaml",
		"valid-file.component-type.yaml",
		"valid-no-params.component-type.yaml",
	}

	for _, file := range validFiles {
		t.Run(file, func(t *testing.T) {
			result, err := ValidateFile(testPath(file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) error: %v", file, err)
			}
			if !result.Valid {
				t.Errorf("expected valid, got invalid with %d issues:", len(result.Issues))
				for _, issue := range result.Issues {
					t.Errorf("  path=%s keyword=%s message=%s", issue.Path, issue.Keyword, issue.Message)
				}
			}
		})
	}
}

func TestValidateFile_InvalidManifests(t *testing.T) {
	invalidFiles := []struct {
		file string
		desc string
	}{
		{"invalid-missing-name.yaml", "missing required name field"},
		{"invalid-bad-name.yaml", "name violates pattern"},
		{"invalid-both-params.yaml", "params and params_schema_file together"},
		{"invalid-bad-version.yaml", "version and requires are not semver"},
		{"invalid-unknown-field.yaml", "unknown top-level field"},
	}

	for _, tt := range invalidFiles {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(testPath(tt.file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) unexpected error: %v", tt.file, err)
			}
			if result.Valid {
				t.Errorf("expected invalid for %s (%s), but got valid", tt.file, tt.desc)
			}
			if len(result.Issues) == 0 {
				t.Errorf("expected at least one issue for %s (%s)", tt.file, tt.desc)
			}
		})
	}
}

func TestValidate_SemverIssues(t *testing.T) {
	result, err := ValidateFile(testPath("invalid-bad-version.yaml"))
	if err != nil {
		t.Fatalf("ValidateFile error: %v", err)
	}

	paths := make(map[string]string)
	for _, issue := range result.Issues {
		paths[issue.Path] = issue.Keyword
	}
	if paths["/version"] != "semver" {
		t.Errorf("expected semver issue on /version, got %v", result.Issues)
	}
	if paths["/requires"] != "semver" {
		t.Errorf("expected semver issue on /requires, got %v", result.Issues)
	}
}

func TestValidate_IssueFields(t *testing.T) {
	result, err := Validate([]byte("name: 123bad\n"))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	issue := result.Issues[0]
	if issue.Path != "/name" {
		t.Errorf("Path = %q, want /name", issue.Path)
	}
	if issue.Keyword == "" || issue.Message == "" {
		t.Errorf("issue should carry keyword and message, got %+v", issue)
	}
}

func TestValidateFile_InvalidYAML(t *testing.T) {
	if _, err := ValidateFile(testPath("invalid-not-yaml.yaml")); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	if _, err := ValidateFile(testPath("nonexistent.yaml")); err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestCheckRequires(t *testing.T) {
	tests := []struct {
		requires string
		version  string
		wantErr  bool
	}{
		{"", "0.1.0", false},
		{">= 0.1.0", "0.3.0", false},
		{">= 0.4.0", "0.3.0", true},
		{"^1.0", "1.4.2", false},
		{">= 9.0.0", "dev", false},
		{"not a constraint", "1.0.0", true},
	}

	for _, tt := range tests {
		m := &ComponentTypeManifest{Name: "t", Requires: tt.requires}
		err := CheckRequires(m, tt.version)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckRequires(%q, %q) err = %v, wantErr %v", tt.requires, tt.version, err, tt.wantErr)
		}
	}
}

func TestNormalizeYAML_NonStringKeys(t *testing.T) {
	in := map[interface{}]interface{}{1: "one", "two": []interface{}{map[interface{}]interface{}{true: "yes"}}}
	out, ok := normalizeYAML(in).(map[string]interface{})
	if !ok {
		t.Fatalf("normalizeYAML returned %T", normalizeYAML(in))
	}
	if out["1"] != "one" {
		t.Errorf(`out["1"] = %v, want one`, out["1"])
	}
	nested := out["two"].([]interface{})[0].(map[string]interface{})
	if nested["true"] != "yes" {
		t.Errorf(`nested["true"] = %v, want yes`, nested["true"])
	}
}
