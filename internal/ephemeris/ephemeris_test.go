package ephemeris

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
)

func TestTableIsValid(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range Table {
		if err := body.Validate(e.Spec()); err != nil {
			t.Errorf("%s: %v", e.Name, err)
		}
		if seen[e.Name] {
			t.Errorf("duplicate entry %s", e.Name)
		}
		seen[e.Name] = true
	}
	if Table[0].Name != "Sun" {
		t.Errorf("expected the Sun first, got %s", Table[0].Name)
	}
}

func TestSpecScalesToSceneUnits(t *testing.T) {
	e, ok := Lookup("Earth")
	if !ok {
		t.Fatal("Earth missing from table")
	}
	s := e.Spec()
	if !s.Position.ApproxEqual(e.Position.Mul(10)) {
		t.Errorf("position = %v", s.Position)
	}
	if !s.Velocity.ApproxEqual(e.Velocity.Mul(10)) {
		t.Errorf("velocity = %v", s.Velocity)
	}
	if d := s.Position.Len(); d < 9.5 || d > 10.5 {
		t.Errorf("Earth should be about 10 scene units out, got %f", d)
	}
	if s.Model != "models/earth.glb#Scene0" {
		t.Errorf("Model = %q", s.Model)
	}
}

func TestSpecs(t *testing.T) {
	specs, missing := Specs([]string{"Sun", "Vulcan", "Moon"})
	if len(specs) != 2 || specs[0].Name != "Sun" || specs[1].Name != "Moon" {
		t.Errorf("unexpected specs: %+v", specs)
	}
	if len(missing) != 1 || missing[0] != "Vulcan" {
		t.Errorf("missing = %v", missing)
	}
}

func TestSunAtRest(t *testing.T) {
	sun, _ := Lookup("Sun")
	if sun.Position != (mgl64.Vec3{}) || sun.Velocity != (mgl64.Vec3{}) {
		t.Errorf("Sun should start at the origin at rest")
	}
	if !sun.Unlit {
		t.Error("Sun is self-lit")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(Table) {
		t.Fatalf("Names() has %d entries, table has %d", len(names), len(Table))
	}
	if names[3] != "Earth" {
		t.Errorf("names[3] = %s", names[3])
	}
}

func TestSmallBodiesDisplaySize(t *testing.T) {
	for _, name := range []string{"Moon", "ISS", "Hubble"} {
		e, ok := Lookup(name)
		if !ok {
			t.Fatalf("%s missing from table", name)
		}
		if e.Radius != 0.002 || e.ModelScale != 0.000003 {
			t.Errorf("%s: radius %g scale %g, want 0.002 and 0.000003", name, e.Radius, e.ModelScale)
		}
	}
	if e, _ := Lookup("Mars"); e.Radius != planetRadius || e.ModelScale != planetScale {
		t.Errorf("Mars: radius %g scale %g", e.Radius, e.ModelScale)
	}
}
