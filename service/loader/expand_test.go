package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	env := map[string]string{"FOO": "bar", "A": "1", "B": "2", "X": "x", "SEED": "42"}
	lookup := func(key string) string { return env[key] }

	var testCases = []struct {
		description string
		input       string
		expect      string
	}{
		{description: "no expressions", input: "duration: 180", expect: "duration: 180"},
		{description: "single expression", input: "name: ${env.FOO}", expect: "name: bar"},
		{description: "multiple expressions", input: "${env.A}-${env.B}-${env.A}", expect: "1-2-1"},
		{description: "unset variable", input: "unset=${env.NOTSET}-end", expect: "unset=-end"},
		{description: "missing closing brace", input: "start ${env.X and ${env.Y} end", expect: "start ${env.X and  end"},
		{description: "empty key", input: "oops ${env.} done", expect: "oops  done"},
		{description: "numeric value", input: "rngSeed: ${env.SEED}", expect: "rngSeed: 42"},
	}
	for _, testCase := range testCases {
		actual := expandEnv([]byte(testCase.input), lookup)
		assert.Equal(t, testCase.expect, string(actual), testCase.description)
	}
}

func TestExpandEnv_OsLookup(t *testing.T) {
	t.Setenv("SIMRUN_TARGETS", "3")
	assert.Equal(t, "targets: 3", string(expandEnv([]byte("targets: ${env.SIMRUN_TARGETS}"), nil)))
}
