package index

import (
	"reflect"
	"testing"
	"time"

	"github.com/lineagekit/lineage/internal/vault"
)

func newTestIndex(t *testing.T) (*Indexer, *vault.DirVault) {
	t.Helper()
	v, err := vault.NewDirVault(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirVault: %v", err)
	}
	return New(v), v
}

func writePerson(t *testing.T, v *vault.DirVault, path, name string) {
	t.Helper()
	if err := v.Write(path, "---\nlineage_type: person\nlineage_id: x\nname: "+name+"\n---\n"); err != nil {
		t.Fatalf("Write %s: %v", path, err)
	}
}

func writePlace(t *testing.T, v *vault.DirVault, path, name, parent string) {
	t.Helper()
	content := "---\nlineage_type: place\nlineage_id: x\nname: " + name + "\n"
	if parent != "" {
		content += "parent_place: " + parent + "\n"
	}
	content += "---\n"
	if err := v.Write(path, content); err != nil {
		t.Fatalf("Write %s: %v", path, err)
	}
}

func TestRebuildAndFind(t *testing.T) {
	ix, v := newTestIndex(t)
	writePerson(t, v, "Lineage/People/John Murphy.md", "John Murphy")
	writePerson(t, v, "Lineage/People/Mary Murphy.md", "Mary Murphy")
	writePlace(t, v, "Lineage/Places/Cork.md", "Cork", "Ireland")
	v.Write("Sessions/note.md", "---\nlineage_type: research_session\n---\n")

	if err := ix.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	got := ix.FindPersonsByName("murphy")
	want := []string{"Lineage/People/John Murphy.md", "Lineage/People/Mary Murphy.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindPersonsByName = %v, want %v", got, want)
	}

	if got := ix.FindPersonsByName("john"); !reflect.DeepEqual(got, []string{"Lineage/People/John Murphy.md"}) {
		t.Errorf("FindPersonsByName(john) = %v", got)
	}

	if got := ix.FindPlacesByName("cork"); !reflect.DeepEqual(got, []string{"Lineage/Places/Cork.md"}) {
		t.Errorf("FindPlacesByName = %v", got)
	}
	if got := ix.FindPlacesByParent("ireland"); !reflect.DeepEqual(got, []string{"Lineage/Places/Cork.md"}) {
		t.Errorf("FindPlacesByParent = %v", got)
	}

	// The session note carries neither indexed type.
	if entries := ix.PersonEntries(); len(entries) != 2 {
		t.Errorf("PersonEntries = %+v", entries)
	}
}

func TestUpdateTypeChangeEvicts(t *testing.T) {
	ix, v := newTestIndex(t)
	writePerson(t, v, "x.md", "John Murphy")
	if err := ix.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	writePlace(t, v, "x.md", "Cork", "")
	ix.Update("x.md")

	if got := ix.FindPersonsByName("john"); got != nil {
		t.Errorf("person still indexed after type change: %v", got)
	}
	if got := ix.FindPlacesByName("cork"); !reflect.DeepEqual(got, []string{"x.md"}) {
		t.Errorf("FindPlacesByName = %v", got)
	}
}

func TestRemove(t *testing.T) {
	ix, v := newTestIndex(t)
	writePerson(t, v, "x.md", "John Murphy")
	if err := ix.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	ix.Remove("x.md")
	if got := ix.FindPersonsByName("john"); got != nil {
		t.Errorf("person still indexed after removal: %v", got)
	}
}

func TestHandleChange(t *testing.T) {
	ix, v := newTestIndex(t)
	writePerson(t, v, "x.md", "John Murphy")

	ix.HandleChange(vault.Change{Path: "x.md", Op: vault.OpCreate, Time: time.Now()})
	if got := ix.FindPersonsByName("john"); !reflect.DeepEqual(got, []string{"x.md"}) {
		t.Errorf("FindPersonsByName after create = %v", got)
	}

	ix.HandleChange(vault.Change{Path: "x.md", Op: vault.OpRemove, Time: time.Now()})
	if got := ix.FindPersonsByName("john"); got != nil {
		t.Errorf("FindPersonsByName after remove = %v", got)
	}
}

func TestUpdateMissingFileRemoves(t *testing.T) {
	ix, v := newTestIndex(t)
	writePerson(t, v, "x.md", "John Murphy")
	if err := ix.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// Simulate deletion followed by a write notification.
	if err := v.Write("y.md", "placeholder"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ix.Update("gone.md")
	if got := ix.FindPersonsByName("john"); !reflect.DeepEqual(got, []string{"x.md"}) {
		t.Errorf("unrelated update disturbed index: %v", got)
	}
}
