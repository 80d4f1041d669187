package path

import (
	"testing"

	"github.com/gzhole/guardrails/internal/rules"
)

func TestAnalyze_SSHPrivateKey(t *testing.T) {
	hits := Analyze("/home/u/.ssh/id_rsa", "/home/u", rules.Critical)
	found := false
	for _, h := range hits {
		if h.RuleID == "secret-ssh-key" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected secret-ssh-key hit, got %+v", hits)
	}
}

func TestAnalyze_SSHPublicKeyNotFlagged(t *testing.T) {
	hits := Analyze("/home/u/.ssh/id_rsa.pub", "/home/u", rules.Strict)
	for _, h := range hits {
		if h.RuleID == "secret-ssh-key" {
			t.Errorf("public key should not match private key rule: %+v", hits)
		}
	}
}

func TestNormalize_TildeExpansion(t *testing.T) {
	got := Normalize("~/.ssh/id_rsa", "/some/cwd")
	if got == "~/.ssh/id_rsa" {
		t.Error("tilde should have been expanded")
	}
}

func TestNormalize_RelativePathJoinsCwd(t *testing.T) {
	got := Normalize("sub/file.env", "/project")
	want := "/project/sub/file.env"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_DotDotResolution(t *testing.T) {
	got := Normalize("/project/sub/../.env", "/project")
	want := "/project/.env"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestAnalyze_SeverityGating(t *testing.T) {
	// config.json is Strict severity; must not fire at High.
	highHits := Analyze("/project/config.json", "/project", rules.High)
	for _, h := range highHits {
		if h.RuleID == "secret-config-with-auth" {
			t.Errorf("config.json rule is Strict, should not fire at High: %+v", highHits)
		}
	}
	strictHits := Analyze("/project/config.json", "/project", rules.Strict)
	found := false
	for _, h := range strictHits {
		if h.RuleID == "secret-config-with-auth" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected secret-config-with-auth hit at Strict level, got %+v", strictHits)
	}
}
