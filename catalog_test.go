package histret

import (
	"strings"
	"testing"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := DefaultCatalog()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if len(c.Assets) == 0 {
		t.Fatal("built-in catalog has no assets")
	}
	if c.Inflation == nil {
		t.Fatal("built-in catalog has no inflation series")
	}
	for _, a := range c.Assets {
		if a.Name == "" || a.Description == "" {
			t.Errorf("asset %s misses name or description", a.Key)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	const doc = `
assets:
  - key: SP_500
    name: S&P 500
    description: US large cap stocks
    chain:
      - kind: shiller-sp500
      - kind: yahoo
        ticker: ^SP500TR
        first_year: 1988
inflation:
  key: INFLATION
  name: Inflation
  chain:
    - kind: fred-inflation
`
	c, err := LoadCatalog(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadCatalog() returned error: %v", err)
	}

	if len(c.Assets) != 1 || c.Assets[0].Key != "SP_500" {
		t.Fatalf("Assets = %+v, want one SP_500", c.Assets)
	}
	chain := c.Assets[0].Chain
	if len(chain) != 2 || chain[1].Ticker != "^SP500TR" || chain[1].FirstYear != 1988 {
		t.Errorf("Chain = %+v, want shiller then yahoo(^SP500TR, 1988)", chain)
	}
	if c.Inflation == nil || c.Inflation.Key != "INFLATION" {
		t.Errorf("Inflation = %+v, want INFLATION", c.Inflation)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"Unknown Field", "assets:\n  - key: A\n    naem: typo\n    chain: [{kind: yahoo}]\n"},
		{"Missing Key", "assets:\n  - name: anonymous\n    chain: [{kind: yahoo}]\n"},
		{"Empty Chain", "assets:\n  - key: A\n    name: a\n    chain: []\n"},
		{"Duplicate Key", "assets:\n  - {key: A, name: a, chain: [{kind: yahoo}]}\n  - {key: A, name: b, chain: [{kind: yahoo}]}\n"},
		{"Not YAML", "{{{"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadCatalog(strings.NewReader(tc.doc)); err == nil {
				t.Errorf("LoadCatalog(%q) succeeded, want error", tc.doc)
			}
		})
	}
}
