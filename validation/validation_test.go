package validation_test

import (
	"testing"

	"github.com/diewo77/clientsync/validation"
)

func TestValidators(t *testing.T) {
	v := validation.Violations{}
	validation.Required("name", "  ", v)
	validation.Email("email", "not-an-email", v)
	validation.OneOf("status", "archived", []string{"active", "inactive"}, v)
	validation.MinLength("password", "short", 8, v)

	want := map[string]string{
		"name":     "required",
		"email":    "invalid_email",
		"status":   "invalid_value",
		"password": "too_short",
	}
	for field, code := range want {
		if v[field] != code {
			t.Errorf("%s: got %q, want %q", field, v[field], code)
		}
	}

	ok := validation.Violations{}
	validation.Required("name", "Acme", ok)
	validation.Email("email", "ops@acme.com", ok)
	validation.Email("optional", "", ok)
	validation.OneOf("status", "active", []string{"active", "inactive"}, ok)
	if !ok.Empty() {
		t.Errorf("expected no violations, got %v", ok)
	}
}
