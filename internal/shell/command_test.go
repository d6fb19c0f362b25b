package shell

import "testing"

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "alpha"})
	r.Register(&Command{Name: "beta"})

	if c := r.Lookup("alpha"); c == nil || c.Name != "alpha" {
		t.Errorf("Lookup(alpha) = %v", c)
	}
	if c := r.Lookup("beta"); c == nil || c.Name != "beta" {
		t.Errorf("Lookup(beta) = %v", c)
	}
	if c := r.Lookup("gamma"); c != nil {
		t.Errorf("Lookup(gamma) = %v, want nil", c)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

// Registering a name again shadows the earlier command without
// removing it.
func TestRegistry_Shadowing(t *testing.T) {
	r := NewRegistry()
	old := &Command{Name: "x", Usage: "old"}
	neu := &Command{Name: "x", Usage: "new"}
	r.Register(old)
	r.Register(neu)

	if c := r.Lookup("x"); c != neu {
		t.Errorf("Lookup(x) returned the shadowed command (usage %q)", c.Usage)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistry_IgnoresInvalid(t *testing.T) {
	r := NewRegistry()
	r.Register(nil)
	r.Register(&Command{Name: ""})

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

// Walk visits newest registration first.
func TestRegistry_WalkOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "a"})
	r.Register(&Command{Name: "b"})
	r.Register(&Command{Name: "c"})

	var names []string
	r.Walk(func(c *Command) bool {
		names = append(names, c.Name)
		return true
	})

	want := []string{"c", "b", "a"}
	if len(names) != len(want) {
		t.Fatalf("visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("visit %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestRegistry_WalkEarlyStop(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "a"})
	r.Register(&Command{Name: "b"})

	n := 0
	r.Walk(func(*Command) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("visited %d commands, want 1", n)
	}
}
