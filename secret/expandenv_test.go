package secret

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("GATEWAY_CLIENT_ID", "client-1")

	out, err := ExpandEnvStrict("id=${GATEWAY_CLIENT_ID}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "id=client-1" {
		t.Errorf("ExpandEnvStrict() = %q, want id=client-1", out)
	}
}

func TestExpandEnvStrictMissingVars(t *testing.T) {
	t.Setenv("KNOWN", "ok")

	_, err := ExpandEnvStrict("${KNOWN} ${GATEWAY_MISSING_B} ${GATEWAY_MISSING_A}")
	if err == nil {
		t.Fatal("ExpandEnvStrict() error = nil, want missing-variable error")
	}
	// Missing names are reported sorted so the error is stable.
	if !strings.Contains(err.Error(), "GATEWAY_MISSING_A, GATEWAY_MISSING_B") {
		t.Errorf("error = %v, want both missing names in sorted order", err)
	}
}

func TestExpandEnvStrictDollarEscape(t *testing.T) {
	t.Setenv("SUFFIX", "tail")

	out, err := ExpandEnvStrict("$$${SUFFIX}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$tail" {
		t.Errorf("ExpandEnvStrict() = %q, want $tail", out)
	}
}
