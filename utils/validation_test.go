package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone("(11) 98765-4321"); got != "11987654321" {
		t.Fatalf("unexpected normalized phone %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("ana@example.com") {
		t.Fatalf("expected valid email")
	}
	if ValidateEmail("ana@") || ValidateEmail("") {
		t.Fatalf("expected invalid email")
	}
}

func TestValidatePhone(t *testing.T) {
	if !ValidatePhone("+55 (11) 98765-4321") {
		t.Fatalf("expected valid phone")
	}
	if ValidatePhone("abc") {
		t.Fatalf("expected invalid phone")
	}
}
