package payload

import "testing"

func TestBytesSafeReturnsItself(t *testing.T) {
	p := Bytes("hello")
	if string(p.Safe().(Bytes)) != "hello" {
		t.Fatalf("Safe() = %v, want %q", p.Safe(), "hello")
	}
	if p.Unsafe() != nil {
		t.Fatal("Bytes.Unsafe() must be nil")
	}
}

func TestSafeSizeNil(t *testing.T) {
	if SafeSize(nil) != 0 {
		t.Fatal("SafeSize(nil) should be 0")
	}
}

func TestSafeSizeNonNil(t *testing.T) {
	if SafeSize(int64(0)) == 0 {
		t.Fatal("SafeSize of a concrete type should be non-zero")
	}
}
