package touch

import (
	"testing"

	"github.com/goliatone/go-declaration/pkg/address"
	"github.com/goliatone/go-declaration/pkg/schema"
)

type rosters map[string][]int64

func (r rosters) MultipleIDs(code string) []int64 {
	return r[code]
}

func testPage() *schema.Page {
	return &schema.Page{
		Code: "p",
		Questions: []*schema.Question{
			{Code: "name", Kind: schema.KindText},
			{Code: "home", Kind: schema.KindAddress},
			{Code: "sales", Kind: schema.KindMultiple, Answers: []*schema.Question{
				{Code: "sale_name", Kind: schema.KindText},
			}},
		},
	}
}

func TestSetTouched(t *testing.T) {
	tr := New(nil, nil)
	if tr.Touched("name", 0) {
		t.Fatalf("fresh tracker should be untouched")
	}
	if !tr.SetTouched("name", 0) {
		t.Fatalf("first touch should report a change")
	}
	if tr.SetTouched("name", 0) {
		t.Fatalf("second touch is a no-op")
	}
	if tr.Touched("name", 1) {
		t.Fatalf("touch is scoped to the instance id")
	}
}

func TestTouchPage_ExpandsGroupsAndAddresses(t *testing.T) {
	model := address.Default()
	tr := New(rosters{"sales": {10, 20}}, model)
	q := testPage().Questions[1]

	if !tr.TouchPage(testPage()) {
		t.Fatalf("expected touch sweep to change state")
	}
	if tr.TouchPage(testPage()) {
		t.Fatalf("second sweep is a no-op")
	}

	for _, tc := range []struct {
		code string
		id   int64
	}{
		{"name", 0},
		{"sale_name", 10},
		{"sale_name", 20},
		{model.FullCodeName(q, address.FieldCity), 0},
		{model.FullCodeName(q, address.FieldPostal), 0},
	} {
		if !tr.Touched(tc.code, tc.id) {
			t.Fatalf("%s@%d should be touched", tc.code, tc.id)
		}
	}
	if tr.Touched("sales", 0) || tr.Touched("home", 0) {
		t.Fatalf("container questions are not touched themselves")
	}
	if tr.Touched("sale_name", 30) {
		t.Fatalf("instances outside the roster stay untouched")
	}
}

func TestTouchPage_Nil(t *testing.T) {
	if New(nil, nil).TouchPage(nil) {
		t.Fatalf("nil page should not change anything")
	}
}

func TestTouchAllAndReset(t *testing.T) {
	tr := New(nil, nil)
	tr.SetTouched("name", 0)
	tr.TouchAll()

	if !tr.All() || !tr.Touched("anything", 99) {
		t.Fatalf("touch-all should cover every pair")
	}
	if tr.SetTouched("other", 1) {
		t.Fatalf("touching under touch-all is a no-op")
	}

	tr.Reset()
	if tr.All() || tr.Touched("name", 0) {
		t.Fatalf("reset should forget everything")
	}
}
