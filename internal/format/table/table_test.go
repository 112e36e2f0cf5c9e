package table

import (
	"reflect"
	"testing"
)

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"root-1", "Node root-1", "1"},
		{"root-1-12", "Node root-1-12", "2"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignLeft, AlignRight})
	want := []string{
		"root-1     Node root-1     1",
		"root-1-12  Node root-1-12  2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestFormatUsesCellWidth(t *testing.T) {
	got := Format([][]string{{"日本", "x"}, {"abc", "y"}}, nil)
	want := []string{"日本  x", "abc   y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFormatRaggedRows(t *testing.T) {
	got := Format([][]string{{"a"}, {"bb", "c"}}, nil)
	want := []string{"a", "bb  c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}
