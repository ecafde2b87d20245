package nodeid

import "testing"

func TestMakeFQN(t *testing.T) {
	got := MakeFQN("g", "v", "h")
	want := "g$$v$$h$$"
	if got != want {
		t.Fatalf("MakeFQN() = %q, want %q", got, want)
	}
}

func TestMakeFQNEmptyVariant(t *testing.T) {
	got := MakeFQN("g", "", "h")
	want := "g$$$$h$$"
	if got != want {
		t.Fatalf("MakeFQN() with empty variant = %q, want %q", got, want)
	}
}

func TestParseRoundTrip(t *testing.T) {
	fqn := MakeFQN("graph", "variant", "short")
	if got := ParseGraphName(fqn); got != "graph" {
		t.Errorf("ParseGraphName() = %q, want %q", got, "graph")
	}
	if got := ParseVariant(fqn); got != "variant" {
		t.Errorf("ParseVariant() = %q, want %q", got, "variant")
	}
	if got := ParseShortName(fqn); got != "short" {
		t.Errorf("ParseShortName() = %q, want %q", got, "short")
	}
}

func TestParseMalformed(t *testing.T) {
	for _, bad := range []string{"", "nodelimiters", "only$$one", "g$$v$$s"} {
		if got := ParseShortName(bad); got != UnsupportedNameFormat {
			t.Errorf("ParseShortName(%q) = %q, want sentinel", bad, got)
		}
	}
}

func TestUniqueVariantNoCollision(t *testing.T) {
	existing := map[string]struct{}{}
	if got := UniqueVariant(existing, "g", "v"); got != "v" {
		t.Fatalf("UniqueVariant() = %q, want %q", got, "v")
	}
}

func TestUniqueVariantCollision(t *testing.T) {
	existing := map[string]struct{}{
		MakeFQN("g", "v", "hX"): {},
	}
	got := UniqueVariant(existing, "g", "v")
	if got != "v_1" {
		t.Fatalf("UniqueVariant() = %q, want %q", got, "v_1")
	}
}

func TestUniqueVariantSkipsTakenSuffixes(t *testing.T) {
	existing := map[string]struct{}{
		MakeFQN("g", "v", "hX"):   {},
		MakeFQN("g", "v_1", "hY"): {},
	}
	got := UniqueVariant(existing, "g", "v")
	if got != "v_2" {
		t.Fatalf("UniqueVariant() = %q, want %q", got, "v_2")
	}
}
