package forms

import (
	"strings"
	"testing"

	"github.com/goliatone/go-mapadmin/pkg/testsupport"
)

func TestKeymapGroupsSorted(t *testing.T) {
	t.Parallel()

	keymap := Keymap{
		"zone_site":    {"zone", "site"},
		"axis_outline": {"axis", "outline"},
	}

	want := []string{"axis_outline", "zone_site"}
	if diff := testsupport.CompareGolden(want, keymap.Groups()); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestKeymapValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		keymap  Keymap
		wantErr string
	}{
		{
			name: "valid",
			keymap: Keymap{
				"a_b": {"a", "b"},
				"c_d": {"c", "d"},
			},
		},
		{
			name: "empty group",
			keymap: Keymap{
				"a_b": nil,
			},
			wantErr: "has no source fields",
		},
		{
			name: "double claim",
			keymap: Keymap{
				"a_b": {"a", "b"},
				"b_c": {"b", "c"},
			},
			wantErr: `field "b" claimed by groups`,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.keymap.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestKeymapSourceGroup(t *testing.T) {
	t.Parallel()

	keymap := Keymap{"boundary_office": {"boundary", "office"}}

	group, ok := keymap.SourceGroup("office")
	if !ok || group != "boundary_office" {
		t.Fatalf("source group = %q (ok=%v)", group, ok)
	}
	if _, ok := keymap.SourceGroup("missing"); ok {
		t.Fatalf("expected miss for unknown source")
	}
}
