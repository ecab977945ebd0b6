package serial_test

import (
	"testing"

	"pervade/serial"
)

func TestAbsoluteURI(t *testing.T) {
	const base = "https://parahumans.wordpress.com/table-of-contents/"

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "already absolute",
			ref:  "https://parahumans.wordpress.com/2011/06/11/1-1/",
			want: "https://parahumans.wordpress.com/2011/06/11/1-1/",
		},
		{
			name: "missing scheme",
			ref:  "parahumans.wordpress.com/2011/06/11/1-1/",
			want: "https://parahumans.wordpress.com/2011/06/11/1-1/",
		},
		{
			name: "root relative",
			ref:  "/2011/06/11/1-1/",
			want: "https://parahumans.wordpress.com/2011/06/11/1-1/",
		},
		{
			name: "space in path",
			ref:  "https://example.com/some page/",
			want: "https://example.com/some%20page/",
		},
		{
			name: "unicode in path",
			ref:  "https://example.com/entré/",
			want: "https://example.com/entr%C3%A9/",
		},
		{
			name: "unicode host",
			ref:  "https://bücher.example/path/",
			want: "https://xn--bcher-kva.example/path/",
		},
		{
			name: "host with port",
			ref:  "https://bücher.example:8080/path/",
			want: "https://xn--bcher-kva.example:8080/path/",
		},
		{
			name: "query and fragment kept",
			ref:  "https://example.com/p?a=b&c=(d)#sec",
			want: "https://example.com/p?a=b&c=(d)#sec",
		},
		{
			name: "unicode in query",
			ref:  "https://example.com/p?q=café",
			want: "https://example.com/p?q=caf%C3%A9",
		},
		{
			name: "preencoded path untouched",
			ref:  "https://example.com/a%20b/",
			want: "https://example.com/a%20b/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := serial.AbsoluteURI(base, tt.ref)
			if err != nil {
				t.Fatalf("AbsoluteURI(%q) failed: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("AbsoluteURI(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestAbsoluteURIErrors(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
	}{
		{"malformed scheme", "https://example.com/", "http:/broken"},
		{"no host", "https://example.com/", "http:///path"},
		{"bad base for relative", "://", "/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := serial.AbsoluteURI(tt.base, tt.ref); err == nil {
				t.Errorf("AbsoluteURI(%q, %q) expected to fail", tt.base, tt.ref)
			}
		})
	}
}
