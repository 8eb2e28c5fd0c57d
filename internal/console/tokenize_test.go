package console

import (
	"reflect"
	"testing"
)

func TestTokenizeCollapsesRepeatedSpaces(t *testing.T) {
	got := Tokenize("cmd   thermo 3   set  42")
	want := []string{"cmd", "thermo", "3", "set", "42"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %#v, want %#v", got, want)
	}
}

func TestTokenizeLeadingTrailingSpaces(t *testing.T) {
	got := Tokenize("  list  ")
	want := []string{"list"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %#v, want %#v", got, want)
	}
}

func TestTokenizeEmptyLine(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %#v, want empty", got)
	}
	if got := Tokenize("    "); len(got) != 0 {
		t.Errorf("Tokenize of all-space line = %#v, want empty", got)
	}
}

func TestTokenizeDoesNotSplitOnTab(t *testing.T) {
	got := Tokenize("cmd\tthermo")
	want := []string{"cmd\tthermo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %#v, want %#v (tab is not a delimiter)", got, want)
	}
}
