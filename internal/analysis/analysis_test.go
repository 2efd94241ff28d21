package analysis

import (
	"strings"
	"testing"
)

func TestTypeValid(t *testing.T) {
	for _, known := range Types {
		if !known.Valid() {
			t.Errorf("Expected %s to be valid", known)
		}
	}
	if Type("design-review").Valid() {
		t.Error("Expected unknown type to be invalid")
	}
	if Type("").Valid() {
		t.Error("Expected empty type to be invalid")
	}
}

func TestParseResult(t *testing.T) {
	cases := []struct {
		name    string
		typ     Type
		raw     string
		wantErr string
	}{
		{
			name: "code review ok",
			typ:  TypeCodeReview,
			raw:  `{"overallRating":7,"summary":"solid","issues":[{"severity":"warning","category":"style","message":"long function"}]}`,
		},
		{
			name:    "code review rating out of range",
			typ:     TypeCodeReview,
			raw:     `{"overallRating":11,"summary":"solid"}`,
			wantErr: "overallRating",
		},
		{
			name:    "code review bad severity",
			typ:     TypeCodeReview,
			raw:     `{"overallRating":5,"summary":"ok","issues":[{"severity":"catastrophic","category":"x","message":"y"}]}`,
			wantErr: "issues.severity",
		},
		{
			name: "explanation ok",
			typ:  TypeCodeExplain,
			raw:  `{"summary":"parses config","purpose":"load env vars"}`,
		},
		{
			name:    "explanation missing purpose",
			typ:     TypeCodeExplain,
			raw:     `{"summary":"parses config"}`,
			wantErr: "purpose",
		},
		{
			name: "refactor ok",
			typ:  TypeRefactor,
			raw:  `{"priority":"high","suggestions":[{"title":"extract","description":"d","before":"b","after":"a","benefit":"x","effort":"low"}]}`,
		},
		{
			name:    "refactor bad priority",
			typ:     TypeRefactor,
			raw:     `{"priority":"urgent","suggestions":[]}`,
			wantErr: "priority",
		},
		{
			name: "bug detect ok",
			typ:  TypeBugDetect,
			raw:  `{"bugsFound":1,"bugs":[{"severity":"major","type":"logic","description":"off by one","fix":"f","impact":"i"}]}`,
		},
		{
			name: "documentation ok",
			typ:  TypeDocumentation,
			raw:  `{"documentedCode":"// Sum adds.\nfunc Sum() {}"}`,
		},
		{
			name:    "documentation empty",
			typ:     TypeDocumentation,
			raw:     `{}`,
			wantErr: "documentedCode",
		},
		{
			name: "performance ok",
			typ:  TypePerformance,
			raw:  `{"score":88,"issues":[{"category":"loop","severity":"medium","description":"d","recommendation":"r","estimatedImpact":"e"}]}`,
		},
		{
			name: "security ok",
			typ:  TypeSecurity,
			raw:  `{"riskLevel":"safe","vulnerabilities":[]}`,
		},
		{
			name:    "security bad risk",
			typ:     TypeSecurity,
			raw:     `{"riskLevel":"terrifying"}`,
			wantErr: "riskLevel",
		},
		{
			name: "accessibility ok",
			typ:  TypeAccessibility,
			raw:  `{"score":95,"wcagLevel":"AA","issues":[{"rule":"alt-text","impact":"serious","description":"d","fix":"f"}]}`,
		},
		{
			name:    "malformed json",
			typ:     TypeCodeReview,
			raw:     `{"overallRating":`,
			wantErr: "malformed",
		},
		{
			name:    "unknown type",
			typ:     Type("design"),
			raw:     `{}`,
			wantErr: "unknown analysis type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseResult(tc.typ, []byte(tc.raw))
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("ParseResult: %v", err)
				}
				if result.Type() != tc.typ {
					t.Errorf("Expected type %s, got %s", tc.typ, result.Type())
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got result %+v", tc.wantErr, result)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestSeverity(t *testing.T) {
	refactor, err := ParseResult(TypeRefactor, []byte(`{"priority":"medium","suggestions":[]}`))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if got := Severity(refactor); got != "medium" {
		t.Errorf("Expected severity medium, got %q", got)
	}

	security, err := ParseResult(TypeSecurity, []byte(`{"riskLevel":"critical"}`))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if got := Severity(security); got != "critical" {
		t.Errorf("Expected severity critical, got %q", got)
	}

	review, err := ParseResult(TypeCodeReview, []byte(`{"overallRating":5,"summary":"ok"}`))
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if got := Severity(review); got != "" {
		t.Errorf("Expected no headline severity for review, got %q", got)
	}
}
