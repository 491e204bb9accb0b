package orgauth

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records the argv it was given and replays a canned
// envelope. onRun fires while any temp files still exist.
type fakeRunner struct {
	args  []string
	out   []byte
	err   error
	onRun func(args []string)
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	f.args = args
	if f.onRun != nil {
		f.onRun(args)
	}
	return f.out, f.err
}

const orgEnvelope = `{"status":0,"result":{"username":"ci@example.com","orgId":"00D000000000001EAA","instanceUrl":"https://example.my.salesforce.com"}}`

func flagValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func TestLoginSfdxURL(t *testing.T) {
	var urlFileContent string
	runner := &fakeRunner{
		out: []byte(orgEnvelope),
		onRun: func(args []string) {
			path, ok := flagValue(args, "--sfdx-url-file")
			if !ok {
				return
			}
			data, err := os.ReadFile(path)
			if err == nil {
				urlFileContent = string(data)
			}
		},
	}
	client := NewWithRunner(runner, nil)

	info, err := client.LoginSfdxURL(context.Background(), "force://clientid::token@example.my.salesforce.com", "ci-org")

	require.NoError(t, err)
	assert.Equal(t, "ci@example.com", info.Username)
	assert.Equal(t, "00D000000000001EAA", info.OrgID)
	assert.Equal(t, "https://example.my.salesforce.com", info.InstanceURL)

	require.GreaterOrEqual(t, len(runner.args), 3)
	assert.Equal(t, []string{"org", "login", "sfdx-url"}, runner.args[:3])
	assert.Contains(t, runner.args, "--json")
	alias, ok := flagValue(runner.args, "--alias")
	require.True(t, ok)
	assert.Equal(t, "ci-org", alias)
	assert.Equal(t, "force://clientid::token@example.my.salesforce.com", urlFileContent)
}

func TestLoginSfdxURL_EmptyURL(t *testing.T) {
	runner := &fakeRunner{out: []byte(orgEnvelope)}
	client := NewWithRunner(runner, nil)

	_, err := client.LoginSfdxURL(context.Background(), "", "ci-org")

	require.Error(t, err)
	assert.Nil(t, runner.args)
}

func TestLoginJWT(t *testing.T) {
	runner := &fakeRunner{out: []byte(orgEnvelope)}
	client := NewWithRunner(runner, nil)

	info, err := client.LoginJWT(context.Background(), JWTParams{
		ClientID:    "3MVG9connected.app",
		Username:    "ci@example.com",
		KeyFile:     "/keys/server.key",
		InstanceURL: "https://test.salesforce.com",
		Alias:       "ci-org",
	})

	require.NoError(t, err)
	assert.Equal(t, "ci@example.com", info.Username)

	assert.Equal(t, []string{"org", "login", "jwt"}, runner.args[:3])
	for flag, want := range map[string]string{
		"--client-id":    "3MVG9connected.app",
		"--username":     "ci@example.com",
		"--jwt-key-file": "/keys/server.key",
		"--instance-url": "https://test.salesforce.com",
		"--alias":        "ci-org",
	} {
		got, ok := flagValue(runner.args, flag)
		require.True(t, ok, "missing %s", flag)
		assert.Equal(t, want, got, flag)
	}
	assert.Contains(t, runner.args, "--json")
}

func TestLoginJWT_MissingParams(t *testing.T) {
	runner := &fakeRunner{out: []byte(orgEnvelope)}
	client := NewWithRunner(runner, nil)

	_, err := client.LoginJWT(context.Background(), JWTParams{Username: "ci@example.com"})

	require.Error(t, err)
	assert.Nil(t, runner.args)
}

func TestLogin_CLIFailureEnvelope(t *testing.T) {
	runner := &fakeRunner{
		out: []byte(`{"status":1,"message":"This org appears to have a problem with its OAuth configuration."}`),
		err: errors.New("exit status 1"),
	}
	client := NewWithRunner(runner, nil)

	_, err := client.LoginSfdxURL(context.Background(), "force://x@y", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAuth configuration")
}

func TestLogin_NonJSONOutput(t *testing.T) {
	runner := &fakeRunner{
		out: nil,
		err: errors.New(`exec: "sf": executable file not found in $PATH`),
	}
	client := NewWithRunner(runner, nil)

	_, err := client.LoginSfdxURL(context.Background(), "force://x@y", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf failed")
}

func TestLogin_EmptyResult(t *testing.T) {
	runner := &fakeRunner{out: []byte(`{"status":0}`)}
	client := NewWithRunner(runner, nil)

	_, err := client.LoginSfdxURL(context.Background(), "force://x@y", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result")
}
