package cmd

import (
	"os"
	"testing"
)

func TestGetCliFlag(t *testing.T) {
	defer func() { twelveFactorMode = false }()
	fnGetConfig := func(key string, out interface{}) error {
		return nil
	}
	flagName := "mock"
	mockEnvVar := flagNameToEnvVar(flagName)
	expected := "envTest"
	d := "myDefault"
	// Test 1 - test default value applied to mock CLI flag.
	got := switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d { // if no default was applied...
		t.Fatalf("test 1 failed: expected default value %v to be applied to mock CLI flag", got.val)
	}
	// Test 2 - fetch flag value from environment when it is not set - expect default value to be applied.
	twelveFactorMode = true // enable twelveFactorMode so that env variables are read.
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d {
		t.Fatalf("test 2 failed: expected default value (%v) to be applied to mock CLI flag fetched via environment variable (%v)", got.val, mockEnvVar)
	}
	// Test 3 - fetch flag value from environment after setting it explicitly (requires twelveFactorMode).
	err := os.Setenv(mockEnvVar, expected)
	if err != nil {
		t.Fatalf("test 3 failed: unable to set environment variable %v", mockEnvVar)
	}
	defer os.Unsetenv(mockEnvVar)
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != expected {
		t.Fatalf("test 3 failed: expected value (%v) to be applied to mock CLI flag (%v) fetched from environment variable (%v); got: %v", expected, flagName, mockEnvVar, got.val)
	}
	// Test 4 - config values are used outside of twelveFactorMode.
	twelveFactorMode = false
	fromConfig := func(key string, out interface{}) error {
		*(out.(*string)) = "configValue"
		return nil
	}
	got = switches.getCliFlag(flagName, d, fromConfig)
	if got.val != "configValue" {
		t.Fatalf("test 4 failed: expected the config value; got: %v", got.val)
	}
}

func TestFlagNameToEnvVar(t *testing.T) {
	if got := flagNameToEnvVar("source-table"); got != "SX_SOURCE_TABLE" {
		t.Fatalf("expected SX_SOURCE_TABLE; got: %v", got)
	}
}

func TestGetQueryFromArgsFunc(t *testing.T) {
	var q string
	fn := getQueryFromArgsFunc(&q, "")
	// Test 1 - args are joined.
	if err := fn(nil, []string{"SELECT", "*", "FROM", "t"}); err != nil {
		t.Fatal("test 1 failed: ", err)
	}
	if q != "SELECT * FROM t" {
		t.Fatalf("test 1 failed: got %q", q)
	}
	// Test 2 - no args is an error with a custom message.
	err := getQueryFromArgsFunc(&q, "custom")(nil, nil)
	if err == nil || err.Error() != "custom" {
		t.Fatalf("test 2 failed: expected error 'custom'; got: %v", err)
	}
}

func TestGetObjectFromArgsFunc(t *testing.T) {
	var obj string
	fn := getObjectFromArgsFunc(&obj, "<table>")
	// Test 1 - one arg is saved.
	if err := fn(nil, []string{"dbo.orders"}); err != nil || obj != "dbo.orders" {
		t.Fatalf("test 1 failed: got %q, %v", obj, err)
	}
	// Test 2 - two args are an error.
	if err := fn(nil, []string{"a", "b"}); err == nil {
		t.Fatal("test 2 failed: expected an error")
	}
}
