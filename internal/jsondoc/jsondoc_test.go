package jsondoc

import (
	"encoding/json"
	"testing"
)

func TestParsePreservesKeyOrder(t *testing.T) {
	v, err := Parse([]byte(`{"zeta":1,"alpha":2,"mid":3}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc, ok := v.(Doc)
	if !ok {
		t.Fatalf("expected Doc, got %T", v)
	}
	want := []string{"zeta", "alpha", "mid"}
	if len(doc) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(doc))
	}
	for i, k := range want {
		if doc[i].Key != k {
			t.Errorf("entry %d: expected key %q, got %q", i, k, doc[i].Key)
		}
	}
}

func TestParseNumbersStayExact(t *testing.T) {
	v, err := Parse([]byte(`{"big": 9007199254740993}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	doc := v.(Doc)
	n, ok := doc[0].Value.(json.Number)
	if !ok {
		t.Fatalf("expected json.Number, got %T", doc[0].Value)
	}
	if n.String() != "9007199254740993" {
		t.Errorf("expected exact integer, got %s", n)
	}
}

func TestParseScalarsAndArrays(t *testing.T) {
	v, err := Parse([]byte(`[true, null, "s", 1.5]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	arr, ok := v.([]any)
	if !ok {
		t.Fatalf("expected []any, got %T", v)
	}
	if len(arr) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(arr))
	}
	if arr[0] != true || arr[1] != nil || arr[2] != "s" {
		t.Errorf("unexpected elements: %+v", arr)
	}
}

func TestParseRejectsInvalidInput(t *testing.T) {
	if _, err := Parse([]byte(`{broken`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := Parse([]byte(`{"a":1} trailing`)); err == nil {
		t.Error("expected error for trailing data")
	}
}

func TestDocMarshalKeepsOrder(t *testing.T) {
	raw := `{"z":true,"a":[1,2],"m":{"y":null,"b":"s"}}`
	v, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("expected round-trip %q, got %q", raw, string(out))
	}
}
