package env

import (
	"testing"

	"github.com/loicsikidi/sudo/pkg/sudo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules(t *testing.T) {
	t.Parallel()

	opts := &options{}
	cmd := newCommand(opts)
	require.NoError(t, cmd.ParseFlags([]string{
		"--prefix", "MY_APP_,CARGO_",
		"--name", "HOME",
		"--wildcard", "X_*",
		"--all",
	}))

	rules := opts.rules()
	strs := make([]string, 0, len(rules))
	for _, r := range rules {
		strs = append(strs, r.String())
	}
	assert.Equal(t, []string{
		"prefix:MY_APP_",
		"prefix:CARGO_",
		"exact:HOME",
		"wildcard:X_*",
		"wildcard:*",
	}, strs)

	env := map[string]string{"ANY": "1"}
	assert.Equal(t, env, sudo.SelectEnvironment(env, rules))
}

func TestRulesEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, (&options{}).rules())
}
