package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.co.uk",
		"user+tag@example.io",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{
		"",
		"a@b",
		"no-at-sign.example.com",
		"user@",
		"@example.com",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"line\nbreak", "line\nbreak"},
		{"tab\there", "tab\there"},
		{"null\x00byte", "nullbyte"},
		{"bell\x07char", "bellchar"},
	}

	for _, tc := range cases {
		if got := SanitizeString(tc.in); got != tc.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type body struct {
		Email string `validate:"required,email"`
		Grade int    `validate:"gte=4,lte=12"`
	}

	v := NewValidator()

	if err := v.ValidateStruct(body{Email: "user@example.com", Grade: 7}); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}

	err := v.ValidateStruct(body{Email: "not-an-email", Grade: 13})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	fields := FormatValidationErrors(err)
	if _, ok := fields["email"]; !ok {
		t.Error("expected an email error")
	}
	if _, ok := fields["grade"]; !ok {
		t.Error("expected a grade error")
	}
}
