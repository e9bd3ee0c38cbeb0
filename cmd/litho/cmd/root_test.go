package cmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     int
		wantRest []string
		wantErr  bool
	}{
		{"absent", []string{"x"}, 5, []string{"x"}, false},
		{"separate value", []string{"--items", "7", "x"}, 7, []string{"x"}, false},
		{"equals form", []string{"x", "--items=9"}, 9, []string{"x"}, false},
		{"last wins", []string{"--items=1", "--items", "2"}, 2, []string{}, false},
		{"missing value", []string{"--items"}, 0, nil, true},
		{"not a number", []string{"--items=many"}, 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest, err := intFlag(tt.args, "--items", 5)
			if (err != nil) != tt.wantErr {
				t.Fatalf("intFlag(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("value = %d, want %d", got, tt.want)
			}
			if diff := cmp.Diff(tt.wantRest, rest); diff != "" {
				t.Errorf("rest mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStringFlag(t *testing.T) {
	got, rest, err := stringFlag([]string{"show", "--db", "t.db"}, "--db", "trace.db")
	if err != nil {
		t.Fatal(err)
	}
	if got != "t.db" {
		t.Errorf("value = %q, want t.db", got)
	}
	if diff := cmp.Diff([]string{"show"}, rest); diff != "" {
		t.Errorf("rest mismatch (-want +got):\n%s", diff)
	}
	if _, _, err := stringFlag([]string{"--db"}, "--db", ""); err == nil {
		t.Error("missing value was accepted")
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"demo", "dump", "trace"} {
		if commands[name] == nil {
			t.Errorf("command %q is not registered", name)
		}
	}
}
