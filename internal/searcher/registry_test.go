package searcher

import (
	"context"
	"reflect"
	"testing"

	apperrors "github.com/peoplebench/people-bench/internal/pkg/errors"
)

type fakeSearcher struct {
	name string
}

func (f *fakeSearcher) Name() string { return f.name }

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]Candidate, error) {
	return nil, nil
}

func TestRegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"exa", "brave", "parallel"} {
		if err := reg.Register(&fakeSearcher{name: name}); err != nil {
			t.Fatalf("Register(%s) error: %v", name, err)
		}
	}

	got, err := reg.Resolve([]string{"brave", "exa"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	names := []string{got[0].Name(), got[1].Name()}
	if !reflect.DeepEqual(names, []string{"brave", "exa"}) {
		t.Errorf("Resolve order = %v, want configured order", names)
	}
}

func TestResolveEmptyMeansAll(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeSearcher{name: "exa"})
	reg.Register(&fakeSearcher{name: "brave"})

	got, err := reg.Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve(nil) error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Resolve(nil) returned %d searchers, want 2", len(got))
	}
}

func TestResolveUnknownIsConfigError(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeSearcher{name: "exa"})

	_, err := reg.Resolve([]string{"exa", "bing"})
	if err == nil {
		t.Fatal("expected error for unknown searcher")
	}
	if !apperrors.IsConfig(err) {
		t.Errorf("error code = %s, want %s", apperrors.Code(err), apperrors.CodeConfig)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&fakeSearcher{name: "exa"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(&fakeSearcher{name: "exa"}); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", APIError("exa", 429, ""), true},
		{"gateway timeout", APIError("exa", 504, ""), true},
		{"server error", APIError("brave", 503, "overloaded"), true},
		{"client error", APIError("brave", 400, "bad query"), false},
		{"unauthorized", APIError("parallel", 401, ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.want {
				t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
