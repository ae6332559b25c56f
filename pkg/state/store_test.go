package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_apply_notifies_observers_of_the_slot_only(t *testing.T) {
	store := NewStore()
	var seen []interface{}
	store.OnChange("score", func(value interface{}) {
		seen = append(seen, value)
	})
	store.OnChange("other", func(value interface{}) {
		t.Error("observer of another slot was notified")
	})

	store.Apply("score", 1)
	store.Set("score", 2)

	assert.Equal(t, []interface{}{1, 2}, seen)
	value, ok := store.Get("score")
	assert.True(t, ok)
	assert.Equal(t, 2, value)
}

func Test_unregistered_observer_is_not_called(t *testing.T) {
	store := NewStore()
	calls := 0
	cancel := store.OnChange("score", func(interface{}) { calls += 1 })
	store.Set("score", 1)
	cancel()
	store.Set("score", 2)

	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]interface{}{"score": 2}, store.Snapshot())
}

func Test_observer_may_write_back_to_the_store(t *testing.T) {
	store := NewStore()
	store.OnChange("a", func(value interface{}) {
		store.Set("b", value)
	})
	store.Set("a", "x")

	value, _ := store.Get("b")
	assert.Equal(t, "x", value)
}
