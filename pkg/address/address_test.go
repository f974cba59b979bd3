package address

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-declaration/pkg/schema"
)

func TestCreate_EmptyAndMalformed(t *testing.T) {
	m := Default()
	if diff := cmp.Diff(Address{}, m.Create("")); diff != "" {
		t.Fatalf("empty input should give zero address (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Address{}, m.Create("{not json")); diff != "" {
		t.Fatalf("malformed input should give zero address (-want +got):\n%s", diff)
	}
}

func TestSerializeCreate(t *testing.T) {
	m := Default()
	value := Address{
		Region: Element{ID: "77", Name: "Moscow", Type: FieldRegion},
		Flat:   "12",
		Postal: "101000",
	}
	got := m.Create(m.Serialize(value))
	if diff := cmp.Diff(value, got); diff != "" {
		t.Fatalf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeElement_ClearsNarrowerLevels(t *testing.T) {
	m := Default()
	old := Address{
		Region: Element{ID: "77", Name: "Moscow"},
		City:   Element{ID: "c1", Name: "Moscow"},
		Street: Element{ID: "s1", Name: "Tverskaya"},
		House:  Element{ID: "h1", Name: "7"},
		Flat:   "12",
		Postal: "125009",
	}

	got := m.ChangeElement(old, FieldCity, Element{ID: "c2", Name: "Zelenograd"}, true)

	want := Address{
		FullAddressString: "Moscow, Zelenograd",
		Region:            old.Region,
		City:              Element{ID: "c2", Name: "Zelenograd"},
		Postal:            "125009",
		UserEdited:        true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeElement_HouseKeepsFlat(t *testing.T) {
	m := Default()
	old := Address{Street: Element{Name: "Main"}, Flat: "3"}
	got := m.ChangeElement(old, FieldHouse, Element{Name: "10"}, false)
	if got.Flat != "3" {
		t.Fatalf("house change must keep flat, got %q", got.Flat)
	}
	if got.FullAddressString != "Main, 10, 3" {
		t.Fatalf("unexpected composed address %q", got.FullAddressString)
	}
}

func TestChangeElement_UnknownField(t *testing.T) {
	m := Default()
	old := Address{Flat: "1"}
	if diff := cmp.Diff(old, m.ChangeElement(old, FieldPostal, Element{Name: "x"}, true)); diff != "" {
		t.Fatalf("non-classifier fields must not change the address (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	m := Standard{}
	all := func(string) bool { return true }

	tests := []struct {
		name       string
		value      Address
		touched    func(string) bool
		short      bool
		skipRegion bool
		want       []string
	}{
		{
			name:    "untouched reports nothing",
			touched: func(string) bool { return false },
			want:    nil,
		},
		{
			name: "nil predicate counts as touched",
			want: []string{FieldRegion, FieldCity, FieldStreet, FieldHouse},
		},
		{
			name:    "area stands in for city",
			value:   Address{Region: Element{Name: "R"}, Area: Element{Name: "A"}, Street: Element{Name: "S"}, House: Element{Name: "H"}},
			touched: all,
			want:    nil,
		},
		{
			name:    "short mode skips street and house",
			touched: all,
			short:   true,
			want:    []string{FieldRegion, FieldCity},
		},
		{
			name:       "skip region",
			touched:    all,
			skipRegion: true,
			want:       []string{FieldCity, FieldStreet, FieldHouse},
		},
		{
			name:    "bad postal",
			value:   Address{Region: Element{Name: "R"}, City: Element{Name: "C"}, Street: Element{Name: "S"}, House: Element{Name: "H"}, Postal: "12a"},
			touched: all,
			want:    []string{FieldPostal},
		},
		{
			name:    "partial touch",
			touched: func(field string) bool { return field == FieldCity },
			want:    []string{FieldCity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := m.Validate(m.Serialize(tt.value), tt.touched, tt.short, tt.skipRegion)
			var got []string
			for _, name := range m.FieldNames() {
				if len(errs[name]) > 0 {
					got = append(got, name)
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("failing fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	m := Standard{Messages: map[string]string{"required": "Fill it in"}}
	errs := m.Validate("", nil, true, true)
	if diff := cmp.Diff([]string{"Fill it in"}, errs.Flatten(m.FieldNames())); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	errs = m.Validate(`{"postal":"1"}`, nil, true, true)
	want := []string{"Fill it in", defaultPostalMessage}
	if diff := cmp.Diff(want, errs.Flatten(m.FieldNames())); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFullCodeName(t *testing.T) {
	m := Default()
	q := &schema.Question{Code: "home", Kind: schema.KindAddress}
	if got := m.FullCodeName(q, FieldCity); got != "homecity" {
		t.Fatalf("unexpected composite code %q", got)
	}
	if got := m.FullCodeName(nil, FieldCity); got != FieldCity {
		t.Fatalf("unexpected composite code for nil question %q", got)
	}
}
