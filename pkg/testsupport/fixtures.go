package testsupport

import (
	"encoding/json"
	"os"
	"reflect"
	"testing"
)

// ReadFixture returns the contents of a testdata file.
func ReadFixture(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

// AssertGoldenJSON fails t unless got encodes to the same JSON document as
// the golden file. Key order and whitespace are ignored.
func AssertGoldenJSON(t testing.TB, path string, got any) {
	t.Helper()
	var want any
	if err := json.Unmarshal(ReadFixture(t, path), &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("encode result: %v", err)
	}
	var actual any
	if err := json.Unmarshal(encoded, &actual); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !reflect.DeepEqual(actual, want) {
		t.Fatalf("%s mismatch\n got: %s", path, encoded)
	}
}
