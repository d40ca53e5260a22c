package pattern

import (
	"errors"
	"testing"
)

func TestCompileCacheIdentity(t *testing.T) {
	m1, err := Compile("/users/:id")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	m2, err := Compile("/users/:id")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if m1 != m2 {
		t.Error("compiling the same source twice should return the same matcher")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []string{
		"/users/:",
		"/users/(:id",
		"/users/:id)",
		"((/:a)",
	}

	for _, src := range tests {
		if _, err := Compile(src); err == nil {
			t.Errorf("Compile(%q) should fail", src)
		}
	}
}

func TestMatchNamedSegments(t *testing.T) {
	m := MustCompile("/users/:id")

	tests := []struct {
		path string
		want map[string]string
	}{
		{"/users/7", map[string]string{"id": "7"}},
		{"/users/alice", map[string]string{"id": "alice"}},
		{"/users", nil},
		{"/users/7/extra", nil},
		{"/projects/7", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := m.Match(tt.path)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("Match(%q)[%q] = %q, want %q", tt.path, k, got[k], v)
			}
		}
	}
}

func TestMatchCatchAll(t *testing.T) {
	m := MustCompile("/admin(*)")

	tests := []struct {
		path     string
		wantRest string
		wantOK   bool
	}{
		{"/admin", "", true},
		{"/admin/users/7", "/users/7", true},
		{"/other", "", false},
	}

	for _, tt := range tests {
		got := m.Match(tt.path)
		if (got != nil) != tt.wantOK {
			t.Errorf("Match(%q) ok = %v, want %v", tt.path, got != nil, tt.wantOK)
			continue
		}
		if !tt.wantOK {
			continue
		}
		if got[WildcardKey] != tt.wantRest {
			t.Errorf("Match(%q)[rest] = %q, want %q", tt.path, got[WildcardKey], tt.wantRest)
		}
	}
}

func TestMatchNamedCatchAll(t *testing.T) {
	m := MustCompile("/files*path")
	got := m.Match("/files/a/b/c")
	if got == nil {
		t.Fatal("expected match")
	}
	if got["path"] != "/a/b/c" {
		t.Errorf("path = %q, want %q", got["path"], "/a/b/c")
	}
	if m.Wildcard() != "path" {
		t.Errorf("Wildcard() = %q, want %q", m.Wildcard(), "path")
	}
}

func TestMatchOptionalGroups(t *testing.T) {
	m := MustCompile(FromParams("id", "tab"))

	tests := []struct {
		path string
		want map[string]string
	}{
		{"", map[string]string{}},
		{"/7", map[string]string{"id": "7"}},
		{"/7/profile", map[string]string{"id": "7", "tab": "profile"}},
		{"/7/profile/x", nil},
	}

	for _, tt := range tests {
		got := m.Match(tt.path)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		if got == nil {
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("Match(%q)[%q] = %q, want %q", tt.path, k, got[k], v)
			}
		}
	}
}

func TestFromParams(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{nil, ""},
		{[]string{"id"}, "(/:id)"},
		{[]string{"id", "tab"}, "(/:id(/:tab))"},
	}

	for _, tt := range tests {
		if got := FromParams(tt.names...); got != tt.want {
			t.Errorf("FromParams(%v) = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestNames(t *testing.T) {
	m := MustCompile("/a/:x/b/:y(/:z)(*)")
	want := []string{"x", "y", "z"}
	got := m.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if m.Wildcard() != WildcardKey {
		t.Errorf("Wildcard() = %q, want %q", m.Wildcard(), WildcardKey)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		src    string
		params map[string]any
		want   string
	}{
		{"/users/:id", map[string]any{"id": "7"}, "/users/7"},
		{"/users/:id", map[string]any{"id": 7}, "/users/7"},
		{"/users/:id(*)", map[string]any{"id": "7"}, "/users/7"},
		{"/users/:id(*)", map[string]any{"id": "7", "rest": "/x"}, "/users/7/x"},
		{"(/:id(/:tab))", map[string]any{"id": "7"}, "/7"},
		{"(/:id(/:tab))", map[string]any{"id": "7", "tab": "a"}, "/7/a"},
		{"(/:id(/:tab))", map[string]any{}, ""},
		{"/flags/:on", map[string]any{"on": true}, "/flags/true"},
	}

	for _, tt := range tests {
		m := MustCompile(tt.src)
		got, err := m.Stringify(tt.params)
		if err != nil {
			t.Errorf("Stringify(%q, %v) error: %v", tt.src, tt.params, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Stringify(%q, %v) = %q, want %q", tt.src, tt.params, got, tt.want)
		}
	}
}

func TestStringifyMissingParam(t *testing.T) {
	m := MustCompile("/users/:id")
	_, err := m.Stringify(map[string]any{"name": "x"})
	if err == nil {
		t.Fatal("expected error for missing required segment")
	}

	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error type = %T, want *MismatchError", err)
	}
	if mismatch.Param != "id" {
		t.Errorf("Param = %q, want %q", mismatch.Param, "id")
	}
}

func TestStringifyIgnoresUnknownKeys(t *testing.T) {
	m := MustCompile("/users/:id")
	got, err := m.Stringify(map[string]any{"id": "7", "sort": "asc"})
	if err != nil {
		t.Fatalf("Stringify error: %v", err)
	}
	if got != "/users/7" {
		t.Errorf("Stringify = %q, want %q", got, "/users/7")
	}
}

func TestDefaultMatchesAnything(t *testing.T) {
	m := Default()

	for _, path := range []string{"", "/", "/a", "/a/b/c"} {
		got := m.Match(path)
		if got == nil {
			t.Errorf("Default().Match(%q) = nil, want match", path)
			continue
		}
		if got[WildcardKey] != path {
			t.Errorf("rest = %q, want %q", got[WildcardKey], path)
		}
	}
	if len(m.Names()) != 0 {
		t.Errorf("Default().Names() = %v, want empty", m.Names())
	}
}

func TestCompileEmptyIsCatchAll(t *testing.T) {
	m, err := Compile("")
	if err != nil {
		t.Fatalf("Compile(\"\") error: %v", err)
	}
	if m != Default() {
		t.Error("Compile(\"\") should return the default catch-all matcher")
	}
}
