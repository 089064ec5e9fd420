package hash

import (
	"strings"
	"testing"
)

func TestSHA256(t *testing.T) {
	tests := []struct {
		input []byte
		want  string
	}{
		{
			[]byte("hello"),
			"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			[]byte(""),
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			got := SHA256(tt.input)
			if got != tt.want {
				t.Errorf("SHA256(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSHA256String(t *testing.T) {
	got := SHA256String("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	if got != want {
		t.Errorf("SHA256String(hello) = %s, want %s", got, want)
	}
}

func TestSHA256Short(t *testing.T) {
	hash := SHA256([]byte("hello"))

	tests := []struct {
		n    int
		want string
	}{
		{8, hash[:8]},
		{16, hash[:16]},
		{32, hash[:32]},
		{64, hash},  // full hash
		{100, hash}, // exceeds length, returns full
	}

	for _, tt := range tests {
		got := SHA256Short([]byte("hello"), tt.n)
		if got != tt.want {
			t.Errorf("SHA256Short(hello, %d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	// Same inputs should produce same output
	k1 := Key("exa", "payroll specialist in boston", "10")
	k2 := Key("exa", "payroll specialist in boston", "10")
	if k1 != k2 {
		t.Errorf("Key not deterministic: %s != %s", k1, k2)
	}

	// Different inputs should produce different output
	k3 := Key("brave", "payroll specialist in boston", "10")
	if k1 == k3 {
		t.Errorf("Key collision across searchers: %s == %s", k1, k3)
	}

	// Part boundaries must matter
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key must not collapse part boundaries")
	}
}

func TestRunID(t *testing.T) {
	id := RunID("2026-08-25T10:00:00Z")

	if len(id) != 12 {
		t.Errorf("RunID length = %d, want 12", len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Errorf("RunID contains non-hex character: %c", c)
		}
	}
	if id != RunID("2026-08-25T10:00:00Z") {
		t.Error("RunID not deterministic")
	}
}

func BenchmarkSHA256(b *testing.B) {
	data := []byte("benchmark test data for hashing performance measurement")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SHA256(data)
	}
}
