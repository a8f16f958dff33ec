package interp

import "testing"

func TestJobManagerAddResolve(t *testing.T) {
	jm := NewJobManager()
	j1 := jm.Add(100, "sleep 5", nil)
	j2 := jm.Add(200, "grep foo", nil)

	if j1.UUID == j2.UUID {
		t.Fatal("two jobs got the same UUID")
	}

	got, err := jm.Resolve("%%")
	if err != nil || got != j2 {
		t.Fatalf("Resolve(%%%%) = %v, %v; want the current job %v", got, err, j2)
	}

	got, err = jm.Resolve("%1")
	if err != nil || got != j1 {
		t.Fatalf("Resolve(%%1) = %v, %v; want %v", got, err, j1)
	}

	got, err = jm.Resolve("%grep")
	if err != nil || got != j2 {
		t.Fatalf("Resolve(%%grep) = %v, %v; want %v", got, err, j2)
	}
}

func TestJobManagerByUUID(t *testing.T) {
	jm := NewJobManager()
	j := jm.Add(100, "sleep 5", nil)

	got, err := jm.ByUUID(j.UUID)
	if err != nil || got != j {
		t.Fatalf("ByUUID = %v, %v; want %v", got, err, j)
	}

	jm.Remove(j.ID)
	if _, err := jm.ByUUID(j.UUID); err == nil {
		t.Fatal("expected an error looking up a removed job by UUID")
	}
	if _, err := jm.findID(j.ID); err == nil {
		t.Fatal("expected an error looking up a removed job by ID")
	}
}

func TestJobManagerRemoveUpdatesCurrentPrev(t *testing.T) {
	jm := NewJobManager()
	j1 := jm.Add(100, "a", nil)
	j2 := jm.Add(200, "b", nil)

	jm.Remove(j2.ID)
	if jm.current != j1.ID {
		t.Fatalf("current = %d, want %d after removing the current job", jm.current, j1.ID)
	}
	if jm.prev != 0 {
		t.Fatalf("prev = %d, want 0", jm.prev)
	}
}
