package helper

import (
	"testing"
)

type innerCfg struct {
	Name string `errorTxt:"inner name" mandatory:"yes"`
}

type outerCfg struct {
	Id       int    `errorTxt:"id" mandatory:"yes"`
	Optional string `errorTxt:"optional"`
	Inner    innerCfg
	private  string
}

func TestValidateStructIsPopulated(t *testing.T) {
	// Test 1 - all mandatory fields missing.
	err := ValidateStructIsPopulated(&outerCfg{})
	if err == nil {
		t.Fatal("expected an error for missing mandatory fields")
	}
	expected := "please supply values for id, inner name"
	if err.Error() != expected {
		t.Fatalf("expected %q; got %q", expected, err.Error())
	}
	// Test 2 - populated struct passes.
	err = ValidateStructIsPopulated(outerCfg{Id: 1, Inner: innerCfg{Name: "x"}, private: ""})
	if err != nil {
		t.Fatal("unexpected error: ", err)
	}
	// Test 3 - nil pointer is ignored.
	var p *outerCfg
	if err = ValidateStructIsPopulated(p); err != nil {
		t.Fatal("unexpected error for nil pointer: ", err)
	}
}
