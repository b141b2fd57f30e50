package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureGitignoreRule(t *testing.T) {
	dir := t.TempDir()

	gitignorePath := filepath.Join(dir, ".gitignore")
	initial := "node_modules/\n.env\n"
	if err := os.WriteFile(gitignorePath, []byte(initial), 0o644); err != nil {
		t.Fatal(err)
	}

	changed, err := EnsureGitignoreRule(dir, "AGENTS.md")
	if err != nil {
		t.Fatalf("EnsureGitignoreRule() error = %v", err)
	}
	if !changed {
		t.Error("expected .gitignore to change")
	}

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != initial+"AGENTS.md\n" {
		t.Errorf("unexpected .gitignore:\n%s", string(content))
	}
}

func TestEnsureGitignoreRule_Idempotent(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		for _, rule := range GitignoreRules() {
			if _, err := EnsureGitignoreRule(dir, rule); err != nil {
				t.Fatalf("EnsureGitignoreRule(%q) error = %v", rule, err)
			}
		}
	}

	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "AGENTS.md\n**/.agmd/\n" {
		t.Errorf("unexpected .gitignore:\n%s", string(content))
	}
}

func TestEnsureGitignoreRule_NoTrailingNewline(t *testing.T) {
	dir := t.TempDir()

	gitignorePath := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("node_modules/"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := EnsureGitignoreRule(dir, "**/.agmd/"); err != nil {
		t.Fatalf("EnsureGitignoreRule() error = %v", err)
	}

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "node_modules/\n**/.agmd/\n" {
		t.Errorf("unexpected .gitignore:\n%s", string(content))
	}
}

func TestEnsureGitignoreRule_ExactLineOnly(t *testing.T) {
	dir := t.TempDir()

	gitignorePath := filepath.Join(dir, ".gitignore")
	// A CRLF line matches; a prefix or commented rule does not.
	if err := os.WriteFile(gitignorePath, []byte("AGENTS.md\r\n# **/.agmd/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed, err := EnsureGitignoreRule(dir, "AGENTS.md")
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("CRLF line should count as present")
	}

	changed, err = EnsureGitignoreRule(dir, "**/.agmd/")
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("commented rule should not count as present")
	}

	content, _ := os.ReadFile(gitignorePath)
	if strings.Count(string(content), "**/.agmd/\n") != 2 {
		t.Errorf("unexpected .gitignore:\n%s", string(content))
	}
}
