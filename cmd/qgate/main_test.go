package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	type testCase struct {
		name        string
		args        []string
		env         map[string]string
		expectOut   string
		expectError string
	}

	tests := []testCase{
		{name: "version", args: []string{"version"}, expectOut: "qgate 0.1.0\n"},
		{name: "secure without url", args: []string{"keystore", "secure"}, expectError: "--url was empty"},
		{name: "secure without seed", args: []string{"keystore", "secure", "--url", "mem://localhost/keys.json"}, expectError: "QGATE_SEED was empty and --generate was not set"},
		{name: "secure invalid seed", args: []string{"keystore", "secure", "--url", "mem://localhost/keys.json"}, env: map[string]string{seedEnv: "abc"}, expectError: "invalid seed: expected 32 bytes"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			keystoreFlags.url, keystoreFlags.generate = "", false
			out := &bytes.Buffer{}
			rootCmd.SetOut(out)
			rootCmd.SetErr(&bytes.Buffer{})
			rootCmd.SetArgs(tc.args)
			err := rootCmd.ExecuteContext(context.Background())
			if tc.expectError != "" {
				require.Error(t, err)
				assert.EqualError(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectOut, out.String())
		})
	}
}
