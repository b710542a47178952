package app

import (
	"reflect"
	"testing"
)

func TestDirectory_register_idempotent(t *testing.T) {
	d := NewDirectory()
	d.Register("alice")
	d.Register("alice")
	d.Register("bob")

	got := d.ListAll()
	want := []string{"alice", "bob"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListAll() = %v, want %v", got, want)
	}
}

func TestDirectory_unregister_idempotent(t *testing.T) {
	d := NewDirectory()
	d.Register("alice")
	d.Unregister("alice")
	d.Unregister("alice")
	d.Unregister("never-registered")

	if got := d.ListAll(); len(got) != 0 {
		t.Errorf("ListAll() = %v, want empty", got)
	}
}
