package resource

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebounceOnlyLatestCommits(t *testing.T) {
	d := NewDebounce("")
	s1 := d.Input("j")
	s2 := d.Input("ja")
	s3 := d.Input("jan")

	for _, s := range []uint64{s1, s2} {
		if _, ok := d.Elapsed(s); ok {
			t.Fatalf("seq %d should be stale", s)
		}
	}
	v, ok := d.Elapsed(s3)
	if !ok || v != "jan" {
		t.Fatalf("expected commit of jan, got %q %v", v, ok)
	}
	if _, ok := d.Elapsed(s3); ok {
		t.Fatalf("a sequence commits once")
	}
	if d.Committed() != "jan" {
		t.Fatalf("committed = %q", d.Committed())
	}
}

func TestDebounceUnchangedValueDoesNotCommit(t *testing.T) {
	d := NewDebounce("jan")
	d.Input("ja")
	s := d.Input("jan")
	if _, ok := d.Elapsed(s); ok {
		t.Fatalf("typing back to the committed value must not commit")
	}
	if d.Pending() {
		t.Fatalf("nothing should be pending")
	}
}
