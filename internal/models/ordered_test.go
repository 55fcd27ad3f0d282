package models

import (
	"encoding/json"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("zebra", "1")
	m.Set("apple", "2")
	m.Set("mango", "3")
	m.Set("apple", "updated")

	want := []string{"zebra", "apple", "mango"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got, _ := m.Get("apple"); got != "updated" {
		t.Errorf("Updating a key must keep its position but change the value, got %q", got)
	}
}

func TestOrderedMapDelete(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("c", "3")
	m.Delete("b")

	if m.Has("b") {
		t.Error("Deleted key still present")
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Keys() after delete = %v", got)
	}
	m.Delete("missing") // no-op
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestOrderedMapCloneIndependent(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", "1")
	clone := m.Clone()
	clone.Set("a", "changed")
	clone.Set("b", "2")

	if got, _ := m.Get("a"); got != "1" {
		t.Errorf("Mutating a clone must not affect the original, got %q", got)
	}
	if m.Has("b") {
		t.Error("Clone insertion leaked into the original")
	}
}

func TestOrderedMapJSONRoundTrip(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", "last letter")
	m.Set("a", "first letter")
	m.Set("m", "middle")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"z":"last letter","a":"first letter","m":"middle"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	decoded := NewOrderedMap()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(decoded.Keys(), m.Keys()) {
		t.Errorf("Round-trip key order = %v, want %v", decoded.Keys(), m.Keys())
	}
}

func TestOrderedMapJSONRejectsNonStringValues(t *testing.T) {
	m := NewOrderedMap()
	if err := json.Unmarshal([]byte(`{"a": 1}`), m); err == nil {
		t.Error("Expected error for non-string value")
	}
	if err := json.Unmarshal([]byte(`[1, 2]`), m); err == nil {
		t.Error("Expected error for non-object input")
	}
}

func TestOrderedMapYAMLRoundTrip(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", "two")
	m.Set("a", "one")

	data, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded := NewOrderedMap()
	if err := yaml.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(decoded.Keys(), []string{"b", "a"}) {
		t.Errorf("YAML round-trip key order = %v", decoded.Keys())
	}
	if got, _ := decoded.Get("a"); got != "one" {
		t.Errorf("Value 'a' = %q", got)
	}
}
