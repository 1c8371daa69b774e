package location

import "testing"

var resolveTests = [...]struct {
	source, target, want string
}{
	{"http://x/a/b.xsd", "../c.xsd", "http://x/c.xsd"},
	{"http://x/a/b.xsd", "c.xsd", "http://x/a/c.xsd"},
	{"http://x/a/b.xsd", "/root/c.xsd", "http://x/root/c.xsd"},
	{"http://x/a/b.xsd", "https://y/z.xsd", "https://y/z.xsd"},
	{"https://x/a//b/c.xsd", "./d.xsd", "https://x/a/b/d.xsd"},
	{"file:///s/a.xsd", "b.xsd", "file:///s/b.xsd"},
	{"file:///s//t/a.xsd", "../b.xsd", "file:///s/b.xsd"},
	{"/s/a.xsd", "/abs/b.xsd", "/abs/b.xsd"},
	{"/s/a.xsd", "b.xsd", "/s/b.xsd"},
	{"/s/a.xsd", "./sub/../b.xsd", "/s/b.xsd"},
	{"/s/dir", "b.xsd", "/s/dir/b.xsd"},
	{"/a.xsd", "b.xsd", "/b.xsd"},
	{"schemas/a.xsd", "../../../b.xsd", "b.xsd"},
	{"a.xsd", "b.xsd", "b.xsd"},
	{"", "b.xsd", "b.xsd"},
	{`C:\s\a.xsd`, "b.xsd", "C:/s/b.xsd"},
	{`C:\s\a.xsd`, `\x\b.xsd`, "C:/x/b.xsd"},
	{`C:\s\a.xsd`, `D:\x\b.xsd`, `D:\x\b.xsd`},
	{`\\server\share\a.xsd`, "b.xsd", "//server/share/b.xsd"},
	{`\\server\share\a.xsd`, "/b.xsd", "//server/b.xsd"},
	{"/s/a.xsd", "my%20schema.xsd", "/s/my schema.xsd"},
}

func TestResolve(t *testing.T) {
	for _, tt := range resolveTests {
		if got := Resolve(tt.source, tt.target); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, wanted %q", tt.source, tt.target, got, tt.want)
		}
	}
}

func TestRoot(t *testing.T) {
	tests := [...]struct{ in, want string }{
		{"http://example.com/a/b", "http://example.com"},
		{"C:/a/b", "C:"},
		{"//server/share/x", "//server"},
		{"/a/b", ""},
	}
	for _, tt := range tests {
		if got := Root(tt.in); got != tt.want {
			t.Errorf("Root(%q) = %q, wanted %q", tt.in, got, tt.want)
		}
	}
}

func TestIsAbsolute(t *testing.T) {
	for s, want := range map[string]bool{
		"http://x/a.xsd":  true,
		"file:///a.xsd":   true,
		`C:\a.xsd`:        true,
		`\\srv\a.xsd`:     true,
		"/a.xsd":          false,
		"a.xsd":           false,
		"../a.xsd":        false,
		"urn:example:foo": false,
	} {
		if got := IsAbsolute(s); got != want {
			t.Errorf("IsAbsolute(%q) = %v, wanted %v", s, got, want)
		}
	}
}
