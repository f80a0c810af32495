package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcelsud/webhook-dispatch/webhook/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSecretCmd(t *testing.T) {
	out, err := execute(t, "", "secret")
	require.NoError(t, err)

	secret, err := signature.ParseSecret(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, secret.Bytes(), signature.DefaultSecretBytes)

	_, err = execute(t, "", "secret", "--bytes", "8")
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	body := `{"id":"evt-1","type":"game.created"}`
	secret := "plain-shared-secret"

	out, err := execute(t, body, "sign", "--secret", secret)
	require.NoError(t, err)
	sig := strings.TrimSpace(out)
	assert.Equal(t, signature.Sign([]byte(body), []byte(secret)), sig)

	out, err = execute(t, body, "verify", "--secret", "old-secret", "--secret", secret, "--signature", sig)
	require.NoError(t, err)
	assert.Contains(t, out, "signature valid")

	_, err = execute(t, body+" ", "verify", "--secret", secret, "--signature", sig)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestSignFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o600))

	out, err := execute(t, "", "sign", "--secret", "k", "--payload", path)
	require.NoError(t, err)
	assert.Equal(t, signature.Sign([]byte(`{"a":1}`), []byte("k")), strings.TrimSpace(out))

	_, err = execute(t, "", "sign", "--payload", path)
	assert.Error(t, err)
}

func TestEventTypesCmd(t *testing.T) {
	out, err := execute(t, "", "event-types")
	require.NoError(t, err)
	assert.Contains(t, out, "game.created")

	path := filepath.Join(t.TempDir(), "event-types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("event_types:\n  - name: order.paid\n    description: An order was paid\n"), 0o600))

	out, err = execute(t, "", "event-types", path)
	require.NoError(t, err)
	assert.Contains(t, out, "order.paid")
	assert.NotContains(t, out, "game.created")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("event_types:\n  - name: \"bad name!\"\n"), 0o600))
	_, err = execute(t, "", "event-types", bad)
	assert.Error(t, err)
}
