package domain

import "testing"

func TestParsePermission(t *testing.T) {
	cases := []struct {
		raw  string
		want Permission
	}{
		{"orders.view", "orders.view"},
		{"orders.view.own", "orders.view.own"},
		{"finance.reports.all", "finance.reports.all"},
		{"orders.view.global", PermissionUnknown}, // unknown scope
		{"orders", PermissionUnknown},             // missing action
		{"a.b.c.d", PermissionUnknown},            // too many segments
		{"", PermissionUnknown},
		{".view", PermissionUnknown},   // empty resource
		{"orders.", PermissionUnknown}, // empty action
	}
	for _, tc := range cases {
		if got := ParsePermission(tc.raw); got != tc.want {
			t.Fatalf("ParsePermission(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNewPermissionSet_DiscardsMalformed(t *testing.T) {
	set := NewPermissionSet([]string{"orders.view", "garbage", "finance.view.own"})
	if len(set) != 2 {
		t.Fatalf("expected 2 valid permissions, got %d: %v", len(set), set.Tokens())
	}
	if set.Contains(PermissionUnknown) {
		t.Fatalf("sentinel must never be a set member")
	}
	if !set.ContainsAny("users.ban", "finance.view.own") {
		t.Fatalf("expected OR membership to pass")
	}
	if set.ContainsAny("users.ban", "users.edit") {
		t.Fatalf("expected OR membership to fail when nothing is held")
	}
}

func TestScopedPermissionBuilders(t *testing.T) {
	if got := NewPermission("orders", "view"); got != "orders.view" {
		t.Fatalf("unexpected token: %q", got)
	}
	if got := NewScopedPermission("orders", "view", ScopeAll); got != "orders.view.all" {
		t.Fatalf("unexpected token: %q", got)
	}
}
