package engine

import (
	"reflect"
	"sort"
)

// Scope is the local observable state bindings read from and write to.
// Implementations must be comparable, a pointer type usually.
type Scope interface {
	Get(slot string) (interface{}, bool)
	// Apply stores value in slot and notifies the slot's observers
	// before returning.
	Apply(slot string, value interface{})
	// OnChange registers fn for every change of slot and returns a
	// function that unregisters it.
	OnChange(slot string, fn func(value interface{})) func()
}

type slotKey struct {
	scope Scope
	slot  string
}

// Declaration pairs a local slot with a remote variable, whose sigil
// selects the synchronization policy.
type Declaration struct {
	Local  string
	Remote string
}

// Declarations converts a local -> remote mapping, ordered by local name.
func Declarations(pairs map[string]string) []Declaration {
	decls := make([]Declaration, 0, len(pairs))
	for local, remote := range pairs {
		decls = append(decls, Declaration{Local: local, Remote: remote})
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Local < decls[j].Local
	})
	return decls
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// appended returns a copy of the sequence held in current with value added.
// A current value that is not a sequence starts a new one.
func appended(current interface{}, value interface{}) []interface{} {
	seq, _ := current.([]interface{})
	out := make([]interface{}, len(seq), len(seq)+1)
	copy(out, seq)
	return append(out, value)
}
