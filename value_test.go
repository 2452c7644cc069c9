package air

import "testing"

func TestValueStorePutIsIdempotent(t *testing.T) {
	store := NewValueStore()

	c1, err := store.Put(map[string]interface{}{"a": 1.0})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	c2, err := store.Put(map[string]interface{}{"a": 1.0})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if c1 != c2 {
		t.Fatalf("expected identical values to hash to the same CID, got %s and %s", c1, c2)
	}
	if store.Len() != 1 {
		t.Fatalf("expected store to dedupe to 1 entry, got %d", store.Len())
	}
}

func TestValueStoreResolveMiss(t *testing.T) {
	store := NewValueStore()
	other := NewValueStore()

	c, err := other.Put("hello")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := store.Resolve(c); err == nil {
		t.Fatal("expected Resolve to fail for a CID never written to this store")
	} else if !IsUncatchable(err) {
		t.Fatalf("expected an uncatchable CidStoreMiss, got %v", err)
	}
}

func TestValueStorePutDeepCopies(t *testing.T) {
	store := NewValueStore()

	original := map[string]interface{}{"nested": []interface{}{1.0, 2.0}}
	c, err := store.Put(original)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	original["nested"].([]interface{})[0] = 99.0

	stored, _ := store.Get(c)
	storedMap := stored.(map[string]interface{})
	if storedMap["nested"].([]interface{})[0] != 1.0 {
		t.Fatalf("mutating the caller's value after Put must not affect the stored copy")
	}
}
