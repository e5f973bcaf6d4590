package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminconsole/internal/platform/auth"
	"adminconsole/internal/platform/models"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "consolectl", cmd.Use)
	assert.Contains(t, cmd.Long, "invalidation")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"login", "logout", "whoami", "list", "get", "watch"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "configs/config.yaml", configFlag.DefValue)
}

func TestListCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	listCmd, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)

	for _, name := range []string{"page", "limit", "search", "sort-by", "sort-order", "status", "organization"} {
		assert.NotNil(t, listCmd.Flags().Lookup(name), name)
	}
	assert.Contains(t, listCmd.Long, "tasks")
}

func TestCollectionNames(t *testing.T) {
	names := CollectionNames()
	assert.Len(t, names, 12)
	assert.Contains(t, names, "organizations")
	assert.Contains(t, names, "email-logs")
	assert.IsIncreasing(t, names)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "yaml", "whoami"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "x", fmt.Errorf("y"))))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("unknown flag")))
}

const (
	testOrg  = "64b7f0c2a1b2c3d4e5f60718"
	testUser = "64b7f0c2a1b2c3d4e5f60719"
	testTask = "64b7f0c2a1b2c3d4e5f6071a"
)

func backendToken(t *testing.T) string {
	claims := auth.Claims{
		UserID:       testUser,
		Email:        "manager@example.com",
		Role:         "manager",
		Organization: testOrg,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend"))
	require.NoError(t, err)
	return tok
}

func newBackend(t *testing.T) *httptest.Server {
	token := backendToken(t)
	write := func(w http.ResponseWriter, status int, data any, meta *models.Meta) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"statusCode": status, "success": status < 400, "message": "ok", "data": data, "meta": meta})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" && r.Header.Get("Authorization") != "Bearer "+token {
			write(w, http.StatusUnauthorized, nil, nil)
			return
		}
		switch r.Method + " " + r.URL.Path {
		case "POST /api/v1/auth/login":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "correct-horse" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
				return
			}
			write(w, http.StatusOK, map[string]any{"accessToken": token}, nil)
		case "POST /api/v1/auth/logout":
			write(w, http.StatusOK, nil, nil)
		case "GET /api/v1/auth/me":
			write(w, http.StatusOK, models.User{ID: testUser, FirstName: "Mina", Email: "manager@example.com", Role: models.RoleManager, Organization: testOrg}, nil)
		case "GET /api/v1/tasks":
			tasks := []models.Task{{ID: testTask, Organization: testOrg, Title: "Call back", Status: models.TaskOngoing}}
			write(w, http.StatusOK, tasks, &models.Meta{Page: 1, Limit: 10, Total: 1, TotalPage: 1})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "not found"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, backendURL string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
backend:
  base_url: %s/api/v1
  timeout: 5s
session:
  db_path: %s
  secret: cli-test-secret
`, backendURL, filepath.Join(dir, "console.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type run struct {
	out  string
	code int
}

func execute(t *testing.T, stdin string, args ...string) run {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return run{out: out.String(), code: GetExitCode(err)}
}

func decode(t *testing.T, out string) (CLIResponse, json.RawMessage) {
	t.Helper()
	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp.CLIResponse, resp.Data
}

func TestSessionLifecycle(t *testing.T) {
	srv := newBackend(t)
	config := writeConfig(t, srv.URL)

	t.Run("whoami before login", func(t *testing.T) {
		r := execute(t, "", "--config", config, "--format", "json", "whoami")
		assert.Equal(t, ExitFailure, r.code)
		resp, _ := decode(t, r.out)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, ErrCodeSession, resp.Error.Code)
	})

	t.Run("login rejects a short password before calling the backend", func(t *testing.T) {
		r := execute(t, "", "--config", config, "--format", "json", "login", "-e", "manager@example.com", "-p", "abc")
		assert.Equal(t, ExitFailure, r.code)
		resp, _ := decode(t, r.out)
		assert.Equal(t, ErrCodeInput, resp.Error.Code)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		r := execute(t, "", "--config", config, "--format", "json", "login", "-e", "manager@example.com", "-p", "wrong-horse")
		assert.Equal(t, ExitFailure, r.code)
		resp, _ := decode(t, r.out)
		assert.Equal(t, "HTTP_401", resp.Error.Code)
		assert.Equal(t, "Invalid credentials", resp.Error.Message)
	})

	t.Run("login reads password from stdin", func(t *testing.T) {
		r := execute(t, "correct-horse\n", "--config", config, "login", "-e", "Manager@Example.com")
		require.Equal(t, ExitSuccess, r.code, r.out)
		assert.Contains(t, r.out, "Signed in as manager@example.com (manager)")
	})

	t.Run("whoami", func(t *testing.T) {
		r := execute(t, "", "--config", config, "--format", "json", "whoami")
		require.Equal(t, ExitSuccess, r.code, r.out)
		_, data := decode(t, r.out)

		var got struct {
			Session sessionOutput `json:"session"`
			User    struct {
				FullName string `json:"fullName"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, testUser, got.Session.UserID)
		assert.Equal(t, testOrg, got.Session.Organization)
		assert.Equal(t, "Mina", got.User.FullName)
	})

	t.Run("list tasks", func(t *testing.T) {
		r := execute(t, "", "--config", config, "--format", "json", "list", "tasks")
		require.Equal(t, ExitSuccess, r.code, r.out)
		_, data := decode(t, r.out)

		var page struct {
			Data []struct {
				ID          string `json:"_id"`
				StatusBadge struct {
					Label string `json:"label"`
				} `json:"statusBadge"`
			} `json:"data"`
			Meta models.Meta `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(data, &page))
		require.Len(t, page.Data, 1)
		assert.Equal(t, testTask, page.Data[0].ID)
		assert.Equal(t, "Ongoing", page.Data[0].StatusBadge.Label)
		assert.Equal(t, 1, page.Meta.Total)
	})

	t.Run("list tasks as text", func(t *testing.T) {
		r := execute(t, "", "--config", config, "list", "tasks")
		require.Equal(t, ExitSuccess, r.code, r.out)
		assert.Contains(t, r.out, "_ID")
		assert.Contains(t, r.out, "Call back")
		assert.Contains(t, r.out, "page 1/1, 1 total")
	})

	t.Run("unknown collection", func(t *testing.T) {
		r := execute(t, "", "--config", config, "--format", "json", "list", "widgets")
		assert.Equal(t, ExitCommandError, r.code)
		resp, _ := decode(t, r.out)
		assert.Equal(t, ErrCodeCollection, resp.Error.Code)
	})

	t.Run("get with a malformed id", func(t *testing.T) {
		r := execute(t, "", "--config", config, "--format", "json", "get", "tasks", "nope")
		assert.Equal(t, ExitFailure, r.code)
		resp, _ := decode(t, r.out)
		assert.Equal(t, ErrCodeInput, resp.Error.Code)
	})

	t.Run("logout", func(t *testing.T) {
		r := execute(t, "", "--config", config, "logout")
		require.Equal(t, ExitSuccess, r.code, r.out)
		assert.Contains(t, r.out, "Signed out")

		r = execute(t, "", "--config", config, "--format", "json", "whoami")
		assert.Equal(t, ExitFailure, r.code)
	})
}

func TestMissingSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  db_path: "+filepath.Join(dir, "c.db")+"\n"), 0o644))

	r := execute(t, "", "--config", path, "--format", "json", "whoami")
	assert.Equal(t, ExitCommandError, r.code)
	resp, _ := decode(t, r.out)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}
