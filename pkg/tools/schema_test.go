package tools

import (
	"strings"
	"testing"
)

func searchLikeSchema() *Schema {
	return ObjectSchema(map[string]Property{
		"query":       {Type: TypeString, Description: "the query"},
		"num_results": {Type: TypeInteger, Description: "how many"},
		"safe":        {Type: TypeBoolean},
	}, "query")
}

func TestValidateMissingRequired(t *testing.T) {
	s := searchLikeSchema()
	_, err := s.Validate(map[string]interface{}{"num_results": 3.0})
	if err == nil {
		t.Fatal("expected error for missing required parameter")
	}
	if !strings.Contains(err.Error(), "query") {
		t.Errorf("error should name the offending parameter, got: %v", err)
	}
}

func TestValidateUnexpectedParameter(t *testing.T) {
	s := searchLikeSchema()
	_, err := s.Validate(map[string]interface{}{"query": "go", "bogus": 1})
	if err == nil {
		t.Fatal("expected error for undeclared parameter")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the offending parameter, got: %v", err)
	}
}

func TestValidateCoercesIntegralFloat(t *testing.T) {
	// JSON numbers decode as float64; integer params must accept 5.0.
	s := searchLikeSchema()
	out, err := s.Validate(map[string]interface{}{"query": "go", "num_results": 5.0})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	n, ok := out["num_results"].(int)
	if !ok || n != 5 {
		t.Errorf("expected num_results coerced to int 5, got %T %v", out["num_results"], out["num_results"])
	}
}

func TestValidateRejectsFractionalInteger(t *testing.T) {
	s := searchLikeSchema()
	_, err := s.Validate(map[string]interface{}{"query": "go", "num_results": 5.5})
	if err == nil {
		t.Fatal("expected error for fractional value in integer parameter")
	}
	if !strings.Contains(err.Error(), "num_results") {
		t.Errorf("error should name the offending parameter, got: %v", err)
	}
}

func TestValidateTypeMismatches(t *testing.T) {
	s := searchLikeSchema()
	cases := []struct {
		name string
		args map[string]interface{}
	}{
		{"string gets number", map[string]interface{}{"query": 42.0}},
		{"boolean gets string", map[string]interface{}{"query": "go", "safe": "yes"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Validate(tc.args); err == nil {
				t.Errorf("expected type error for %v", tc.args)
			}
		})
	}
}

func TestValidateNilSchemaPassesThrough(t *testing.T) {
	var s *Schema
	args := map[string]interface{}{"anything": "goes"}
	out, err := s.Validate(args)
	if err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
	if out["anything"] != "goes" {
		t.Error("nil schema should pass arguments through")
	}
}

func TestSchemaCheckUnknownType(t *testing.T) {
	s := ObjectSchema(map[string]Property{
		"bad": {Type: "decimal"},
	})
	if err := s.Check(); err == nil {
		t.Error("expected Check to reject unknown property type")
	}
}
