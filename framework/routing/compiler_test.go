package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tier classification is internal, so these tests live in-package.

func TestClassify(t *testing.T) {
	tests := []struct {
		pattern string
		want    tier
	}{
		{"/", tierStatic},
		{"/users", tierStatic},
		{"/users/active", tierStatic},
		{"/users/{id}", tierDynamic},
		{"/files/{name}.json", tierDynamic},
		{"/users/{id}/posts/{post}", tierRegex},
		{"/{a}{b}", tierRegex},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.pattern))
		})
	}
}

func TestCompilePattern_SingleParam(t *testing.T) {
	re, params := compilePattern("/users/{id}")

	assert.Equal(t, []string{"id"}, params)
	assert.Equal(t, `^/users/([^/]+)$`, re.String())

	m := re.FindStringSubmatch("/users/42")
	require.NotNil(t, m)
	assert.Equal(t, "42", m[1])
}

func TestCompilePattern_MultiParamOrder(t *testing.T) {
	re, params := compilePattern("/users/{user}/posts/{post}")

	assert.Equal(t, []string{"user", "post"}, params)

	m := re.FindStringSubmatch("/users/7/posts/99")
	require.NotNil(t, m)
	assert.Equal(t, []string{"7", "99"}, m[1:])
}

func TestCompilePattern_QuotesLiterals(t *testing.T) {
	re, _ := compilePattern("/files/{name}.json")

	assert.NotNil(t, re.FindStringSubmatch("/files/report.json"))
	// The dot is literal, not a regex wildcard.
	assert.Nil(t, re.FindStringSubmatch("/files/reportXjson"))
}

func TestCompilePattern_ParamsDoNotCrossSlashes(t *testing.T) {
	re, _ := compilePattern("/users/{id}")
	assert.Nil(t, re.FindStringSubmatch("/users/1/posts"))
}

func TestCompile_EveryRouteLandsInExactlyOneTier(t *testing.T) {
	defs := []*Route{
		{Method: "GET", Pattern: "/users", Handler: Named("UserController@Index")},
		{Method: "GET", Pattern: "/users/{id}", Handler: Named("UserController@Show")},
		{Method: "GET", Pattern: "/users/{id}/posts/{post}", Handler: Named("PostController@Show")},
	}
	table := Compile(defs)

	total := 0
	for _, byPath := range table.static {
		total += len(byPath)
	}
	for _, list := range table.dynamic {
		total += len(list)
	}
	for _, list := range table.regex {
		total += len(list)
	}
	assert.Equal(t, len(defs), total)
}

func TestCompile_MalformedBracesNeverDropped(t *testing.T) {
	// An unclosed brace is not a placeholder; it must still be matchable
	// as literal text through the regex tier.
	defs := []*Route{
		{Method: "GET", Pattern: "/odd/{unclosed", Handler: Named("OddController@Show")},
	}
	table := Compile(defs)

	m, err := table.Match("GET", "/odd/{unclosed")
	require.NoError(t, err)
	assert.Equal(t, "OddController@Show", m.Handler.Name())
}
