package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = true
	hashSalt = ""

	cases := []struct {
		name string
		key  string
		val  interface{}
		want interface{}
	}{
		{name: "email_redacted", key: "email", val: "a@b.com", want: "[REDACTED]"},
		{name: "token_redacted", key: "access_token", val: "abc", want: "[REDACTED]"},
		{name: "stripe_customer_redacted", key: "stripe_customer_id", val: "cus_123", want: "[REDACTED]"},
		{name: "stripe_account_redacted", key: "stripe_account_id", val: "acct_123", want: "[REDACTED]"},
		{name: "plain_passthrough", key: "slug", val: "tax-helper", want: "tax-helper"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := sanitizeKVs([]interface{}{tc.key, tc.val})
			if len(out) != 2 {
				t.Fatalf("sanitizeKVs returned %d elements, want 2", len(out))
			}
			if out[1] != tc.want {
				t.Fatalf("sanitizeKVs(%q)=%v, want %v", tc.key, out[1], tc.want)
			}
		})
	}
}

func TestSanitizeKVsHashesCallerIDs(t *testing.T) {
	redactOnce.Do(func() {})
	redactionEnabled = true

	out := sanitizeKVs([]interface{}{"caller_id", "anon_1234"})
	got, ok := out[1].(string)
	if !ok {
		t.Fatalf("expected string, got %T", out[1])
	}
	if got == "anon_1234" {
		t.Fatalf("caller_id was not hashed")
	}
	if len(got) == 0 || got[:5] != "hash:" {
		t.Fatalf("expected hash: prefix, got %q", got)
	}
}

func TestLooksLikeJWT(t *testing.T) {
	if !looksLikeJWT("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0In0.sig") {
		t.Fatalf("expected JWT-shaped string to match")
	}
	if looksLikeJWT("hello.world") {
		t.Fatalf("two-part string should not match")
	}
}
