// Package orgauth authenticates Salesforce orgs for CI review runs by
// shelling out to the sf CLI. The auth protocol itself lives in sf;
// this package builds the command line and reads the JSON envelope
// back.
package orgauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

const sfBinary = "sf"

// Runner executes the sf binary. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

type execRunner struct {
	binary string
}

func (r *execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && stderr.Len() > 0 {
		err = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), err
}

// OrgInfo identifies the authenticated org.
type OrgInfo struct {
	Username    string `json:"username"`
	OrgID       string `json:"orgId"`
	InstanceURL string `json:"instanceUrl"`
}

// envelope is the sf --json response shape. A failed command still
// prints one, with a non-zero status and the message set.
type envelope struct {
	Status  int             `json:"status"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// JWTParams carry the org login jwt flags.
type JWTParams struct {
	ClientID    string
	Username    string
	KeyFile     string
	InstanceURL string
	Alias       string
}

// Client wraps the sf CLI for org logins.
type Client struct {
	runner Runner
	logger *zap.Logger
}

// New creates a client that runs the sf binary from PATH. A nil
// logger disables logging.
func New(logger *zap.Logger) *Client {
	return NewWithRunner(&execRunner{binary: sfBinary}, logger)
}

// NewWithRunner creates a client over a caller-supplied runner.
func NewWithRunner(runner Runner, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{runner: runner, logger: logger}
}

// Available reports whether the sf binary is on PATH.
func (c *Client) Available() bool {
	_, err := exec.LookPath(sfBinary)
	return err == nil
}

// LoginSfdxURL authenticates with a force:// auth URL. The URL is
// written to a temp file because sf refuses it on the command line.
func (c *Client) LoginSfdxURL(ctx context.Context, authURL, alias string) (*OrgInfo, error) {
	if authURL == "" {
		return nil, errors.New("auth url is empty")
	}

	f, err := os.CreateTemp("", "sfdx-auth-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create auth url file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(authURL); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write auth url file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close auth url file: %w", err)
	}

	args := []string{"org", "login", "sfdx-url", "--sfdx-url-file", f.Name(), "--json"}
	if alias != "" {
		args = append(args, "--alias", alias)
	}

	return c.login(ctx, args)
}

// LoginJWT authenticates with the JWT bearer flow.
func (c *Client) LoginJWT(ctx context.Context, params JWTParams) (*OrgInfo, error) {
	if params.ClientID == "" || params.Username == "" || params.KeyFile == "" {
		return nil, errors.New("client id, username and key file are all required")
	}

	args := []string{"org", "login", "jwt",
		"--client-id", params.ClientID,
		"--username", params.Username,
		"--jwt-key-file", params.KeyFile,
		"--json"}
	if params.InstanceURL != "" {
		args = append(args, "--instance-url", params.InstanceURL)
	}
	if params.Alias != "" {
		args = append(args, "--alias", params.Alias)
	}

	return c.login(ctx, args)
}

func (c *Client) login(ctx context.Context, args []string) (*OrgInfo, error) {
	c.logger.Debug("running sf", zap.String("command", strings.Join(args[:3], " ")))

	out, runErr := c.runner.Run(ctx, args...)

	var env envelope
	if err := json.Unmarshal(out, &env); err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("sf failed: %w", runErr)
		}
		return nil, fmt.Errorf("sf output is not JSON: %w", err)
	}

	if env.Status != 0 {
		if env.Message != "" {
			return nil, fmt.Errorf("sf: %s", env.Message)
		}
		if runErr != nil {
			return nil, fmt.Errorf("sf failed: %w", runErr)
		}
		return nil, fmt.Errorf("sf exited with status %d", env.Status)
	}

	if len(env.Result) == 0 {
		return nil, errors.New("sf returned no result")
	}

	var info OrgInfo
	if err := json.Unmarshal(env.Result, &info); err != nil {
		return nil, fmt.Errorf("sf result is not an org: %w", err)
	}

	c.logger.Info("org authenticated",
		zap.String("username", info.Username),
		zap.String("org_id", info.OrgID))

	return &info, nil
}
