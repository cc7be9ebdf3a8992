package dataset

import (
	"reflect"
	"testing"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := InferSchema([]string{"name", "age"}, [][]string{{"Alice", "30"}})
	if err != nil {
		t.Fatalf("InferSchema() error = %v", err)
	}
	return schema
}

func TestDatasetAppendDeduplicates(t *testing.T) {
	ds := New(testSchema(t), []Row{{"Alice", "30"}, {"Bob", "25"}})

	if ds.Append(Row{"Alice", "30"}) {
		t.Error("Append() accepted an exact duplicate of an original row")
	}
	if !ds.Append(Row{"Carol", "41"}) {
		t.Error("Append() rejected a novel row")
	}
	if ds.Append(Row{"Carol", "41"}) {
		t.Error("Append() accepted the same row twice")
	}
	if ds.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ds.Len())
	}
}

func TestDatasetKeyDistinguishesFieldBoundaries(t *testing.T) {
	// "a,b" + "c" must not collide with "a" + "b,c".
	a := Row{"a,b", "c"}
	b := Row{"a", "b,c"}
	if a.Key() == b.Key() {
		t.Error("Key() collides for rows with different field boundaries")
	}
}

func TestDatasetTail(t *testing.T) {
	ds := New(testSchema(t), []Row{{"A", "1"}, {"B", "2"}, {"C", "3"}})

	got := ds.Tail(2)
	want := []Row{{"B", "2"}, {"C", "3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tail(2) = %v, want %v", got, want)
	}

	if got := ds.Tail(10); len(got) != 3 {
		t.Errorf("Tail(10) returned %d rows, want all 3", len(got))
	}
	if got := ds.Tail(0); got != nil {
		t.Errorf("Tail(0) = %v, want nil", got)
	}
}

func TestDatasetTruncate(t *testing.T) {
	ds := New(testSchema(t), []Row{{"A", "1"}, {"B", "2"}, {"C", "3"}})

	ds.Truncate(2)
	if ds.Len() != 2 {
		t.Fatalf("Len() after Truncate(2) = %d, want 2", ds.Len())
	}
	if ds.Contains(Row{"C", "3"}) {
		t.Error("Contains() still true for a truncated row")
	}
	// A truncated row can be re-appended.
	if !ds.Append(Row{"C", "3"}) {
		t.Error("Append() rejected a row that was truncated away")
	}

	ds.Truncate(10)
	if ds.Len() != 3 {
		t.Errorf("Truncate beyond length changed the dataset: len = %d", ds.Len())
	}
}
