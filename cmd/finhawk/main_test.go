package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "report")
}

func TestReportCmd_RequiresAccount(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"report"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account")
}

func TestReportCmd_RendersJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bill/account/7":
			_, _ = w.Write([]byte(`[{"id": 1, "description": "Luz", "maturity": "2024-01-10", "value": 99.9,
			  "status": "PENDING", "category": {"name": "Casa", "type": "PAYMENT"}}]`))
		case "/account/7":
			_, _ = w.Write([]byte(`{"id": 7, "name": "Casa"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	t.Setenv("FINHAWK_API_URL", upstream.URL)
	t.Setenv("TIMEZONE", "UTC")
	xlsx := filepath.Join(t.TempDir(), "out.xlsx")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{
		"report", "--env-file", filepath.Join(t.TempDir(), "none.env"),
		"--account", "7", "--token", "tok", "--month", "0", "--year", "2024",
		"--output", "json", "--xlsx", xlsx,
	})
	root.SetOut(&out)
	root.SetErr(&errOut)

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"windowLabel": "Janeiro 2024"`)
	assert.Contains(t, out.String(), `"despesas": 99.9`)
	assert.FileExists(t, xlsx)
	assert.Contains(t, errOut.String(), "workbook written")
}
