package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name        string
		data        string
		wantKey     string
		wantPayload string
	}{
		{"key only", "\fpay_cash", "pay_cash", ""},
		{"key with payload", "\fpay_cash|42", "pay_cash", "42"},
		{"payload keeps separators", "\fedit_field|a|b", "edit_field", "a|b"},
		{"no prefix", "cash_page|3", "cash_page", "3"},
		{"empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
			if key != tc.wantKey || payload != tc.wantPayload {
				t.Fatalf("got (%q, %q), want (%q, %q)", key, payload, tc.wantKey, tc.wantPayload)
			}
		})
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	key, payload := ParseCallbackData(nil)
	if key != "" || payload != "" {
		t.Fatalf("nil callback parsed to (%q, %q)", key, payload)
	}
}
