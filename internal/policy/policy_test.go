package policy

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Policy
	}{
		{"required", Required},
		{"Optional", Optional},
		{" DISABLED ", Disabled},
		{"", ""},
		{"strict", ""},
		{"require", ""},
	}
	for _, tc := range cases {
		if got := Parse(tc.in); got != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveValues(t *testing.T) {
	cases := []struct {
		name          string
		c             Configured
		wantPolicy    Policy
		wantSource    Source
		ignoredLocal  bool
		ignoredGlobal bool
	}{
		{
			name:       "nothing configured falls back to optional default",
			c:          Configured{},
			wantPolicy: Optional,
			wantSource: SourceDefault,
		},
		{
			name:       "global only",
			c:          Configured{Global: Required},
			wantPolicy: Required,
			wantSource: SourceGlobal,
		},
		{
			name:          "local beats global",
			c:             Configured{Local: Disabled, Global: Required},
			wantPolicy:    Disabled,
			wantSource:    SourceLocal,
			ignoredGlobal: true,
		},
		{
			name:          "repo beats everything",
			c:             Configured{Repo: Required, Local: Optional, Global: Disabled},
			wantPolicy:    Required,
			wantSource:    SourceRepo,
			ignoredLocal:  true,
			ignoredGlobal: true,
		},
		{
			name:          "repo shadows local with no global set",
			c:             Configured{Repo: Optional, Local: Required},
			wantPolicy:    Optional,
			wantSource:    SourceRepo,
			ignoredLocal:  true,
			ignoredGlobal: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ResolveValues(tc.c)
			if res.Effective.Policy != tc.wantPolicy {
				t.Errorf("policy = %q, want %q", res.Effective.Policy, tc.wantPolicy)
			}
			if res.Effective.Source != tc.wantSource {
				t.Errorf("source = %q, want %q", res.Effective.Source, tc.wantSource)
			}
			if res.IgnoredLocal != tc.ignoredLocal {
				t.Errorf("IgnoredLocal = %v, want %v", res.IgnoredLocal, tc.ignoredLocal)
			}
			if res.IgnoredGlobal != tc.ignoredGlobal {
				t.Errorf("IgnoredGlobal = %v, want %v", res.IgnoredGlobal, tc.ignoredGlobal)
			}
		})
	}
}

func TestResolveValuesRecordsConfigured(t *testing.T) {
	c := Configured{Repo: Required, Global: Disabled}
	res := ResolveValues(c)
	if res.Configured != c {
		t.Errorf("Configured = %+v, want %+v", res.Configured, c)
	}
}
