package evtype

import "testing"

func TestMatches(t *testing.T) {
	cases := []struct {
		name         string
		filter, ev   EventType
		want         bool
	}{
		{"exact family and bit", New(1, 0x01), New(1, 0x01), true},
		{"different family", New(1, 0x01), New(2, 0x01), false},
		{"disjoint bits", New(1, 0x01), New(1, 0x02), false},
		{"intersecting bits", New(1, 0x03), New(1, 0x02), true},
		{"wildcard filter matches any subtype", New(1, 0), New(1, 0x80), true},
		{"wildcard filter still requires family match", New(1, 0), New(2, 0x80), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Matches(c.filter, c.ev); got != c.want {
				t.Errorf("Matches(%v, %v) = %v, want %v", c.filter, c.ev, got, c.want)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	a := New(5, 0x01)
	b := New(5, 0x02)
	sum, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Bitmask() != 0x03 {
		t.Errorf("Add bitmask = %#x, want 0x03", sum.Bitmask())
	}

	if _, err := Add(a, New(6, 0x01)); err == nil {
		t.Error("Add across families should fail")
	}
}

func TestEqual(t *testing.T) {
	if !Equal(New(1, 1), New(1, 1)) {
		t.Error("identical event types should be Equal")
	}
	if Equal(New(1, 1), New(1, 2)) {
		t.Error("different bitmasks should not be Equal")
	}
}

func TestIsSingleSubtype(t *testing.T) {
	if !New(1, 0x04).IsSingleSubtype() {
		t.Error("single bit should report IsSingleSubtype")
	}
	if New(1, 0x05).IsSingleSubtype() {
		t.Error("two bits should not report IsSingleSubtype")
	}
	if New(1, 0).IsSingleSubtype() {
		t.Error("wildcard (0) should not report IsSingleSubtype")
	}
}

func TestRegisterStringParse(t *testing.T) {
	Register(42, 0x08, "test.widget.created")

	et := New(42, 0x08)
	if got := et.String(); got != "test.widget.created" {
		t.Errorf("String() = %q, want %q", got, "test.widget.created")
	}

	back, err := Parse("test.widget.created")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !Equal(back, et) {
		t.Errorf("round-trip mismatch: got %v, want %v", back, et)
	}

	if _, err := Parse("does.not.exist"); err == nil {
		t.Error("Parse of unregistered name should fail")
	}
}

func TestStringFallsBackToNumeric(t *testing.T) {
	et := New(200, 0x30) // multi-bit, unregistered
	got := et.String()
	if got == "" {
		t.Error("String() should never be empty")
	}
}

func TestSubEndRegistered(t *testing.T) {
	if SubEnd.String() != "SubEnd" {
		t.Errorf("SubEnd.String() = %q, want SubEnd", SubEnd.String())
	}
	if SubEnd.Family() != ControlFamily {
		t.Errorf("SubEnd family = %d, want %d", SubEnd.Family(), ControlFamily)
	}
}

func TestRegisterPanicsOnMultiBit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register with multi-bit mask should panic")
		}
	}()
	Register(9, 0x03, "bad")
}
