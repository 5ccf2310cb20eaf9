package organize

import (
	"testing"

	"github.com/dgallion1/jobparse/internal/doctree"
)

func sec(id string, t doctree.SectionType, order int) doctree.ProcessedSection {
	return doctree.ProcessedSection{ClassifiedSection: doctree.ClassifiedSection{
		RawSection: doctree.RawSection{ID: id, OriginalOrder: order},
		Type:       t,
	}}
}

func TestSort_CanonicalOrder(t *testing.T) {
	in := []doctree.ProcessedSection{
		sec("a", doctree.SectionUnknown, 0),
		sec("b", doctree.SectionLegal, 1),
		sec("c", doctree.SectionQualifications, 2),
		sec("d", doctree.SectionMetadata, 3),
		sec("e", doctree.SectionApplication, 4),
		sec("f", doctree.SectionRoleOverview, 5),
	}
	got := Sort(in)
	want := []string{"d", "f", "c", "e", "b", "a"}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("position %d: expected %s, got %s", i, w, got[i].ID)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Type.Priority() > got[i].Type.Priority() {
			t.Errorf("priority decreased at %d", i)
		}
	}
}

func TestSort_ApplicationBeforeLegal(t *testing.T) {
	in := []doctree.ProcessedSection{
		sec("apply", doctree.SectionApplication, 0),
		sec("eeo", doctree.SectionLegal, 1),
	}
	for _, order := range [][]doctree.ProcessedSection{in, {in[1], in[0]}} {
		got := Sort(order)
		if got[0].ID != "apply" || got[1].ID != "eeo" {
			t.Errorf("expected apply then eeo, got %s then %s", got[0].ID, got[1].ID)
		}
	}
}

func TestSort_TieBreakByOriginalOrder(t *testing.T) {
	in := []doctree.ProcessedSection{
		sec("late", doctree.SectionUnknown, 5),
		sec("early", doctree.SectionUnknown, 1),
		sec("mid", doctree.SectionUnknown, 3),
	}
	got := Sort(in)
	want := []string{"early", "mid", "late"}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("position %d: expected %s, got %s", i, w, got[i].ID)
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := []doctree.ProcessedSection{
		sec("x", doctree.SectionLegal, 0),
		sec("y", doctree.SectionMetadata, 1),
	}
	_ = Sort(in)
	if in[0].ID != "x" || in[1].ID != "y" {
		t.Errorf("expected input order preserved, got %s, %s", in[0].ID, in[1].ID)
	}
}

func TestSort_Empty(t *testing.T) {
	if got := Sort(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
