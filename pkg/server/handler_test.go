// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarekChromy/Sambacontrolcenter/pkg/mounts"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/samba"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/shares"
	"github.com/MarekChromy/Sambacontrolcenter/pkg/users"
)

func createTestLogger(t *testing.T) logger.Logger {
	testLogger, err := logger.New(logger.Config{LogLevel: "debug"})
	require.NoError(t, err)
	return testLogger
}

// scriptedRunner returns canned tool output keyed by the joined argv
type scriptedRunner struct {
	calls     [][]string
	responses map[string]string
}

func (s *scriptedRunner) key(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (s *scriptedRunner) ExecuteWithCombinedOutput(
	ctx context.Context,
	name string,
	args ...string,
) ([]byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return []byte(s.responses[s.key(name, args)]), nil
}

func (s *scriptedRunner) ExecuteWithInput(
	ctx context.Context,
	input string,
	name string,
	args ...string,
) ([]byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return []byte(s.responses[s.key(name, args)]), nil
}

const testSmbConf = `[global]
   workgroup = WORKGROUP

[docs]
   path = /srv/docs
   writable = yes
`

const testUserListing = `Unix username:        alice
Account Flags:        [U          ]
`

const testServiceStatus = `* smbd.service - Samba SMB Daemon
     Active: active (running) since Mon 2025-08-25 10:00:00 UTC; 2h ago
`

type testPanel struct {
	engine    *gin.Engine
	handler   *Handler
	runner    *scriptedRunner
	confPath  string
	fstabPath string
	dir       string
}

func setupTestPanel(t *testing.T) *testPanel {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	l := createTestLogger(t)

	confPath := filepath.Join(dir, "smb.conf")
	require.NoError(t, os.WriteFile(confPath, []byte(testSmbConf), 0644))

	fstabPath := filepath.Join(dir, "fstab")
	fstab := "//nas/media\t/mnt/media\tcifs\t_netdev,nofail\t0 0\n"
	require.NoError(t, os.WriteFile(fstabPath, []byte(fstab), 0644))

	procPath := filepath.Join(dir, "proc_mounts")
	require.NoError(t, os.WriteFile(procPath,
		[]byte("//nas/media /mnt/media cifs rw 0 0\n"), 0644))

	runner := &scriptedRunner{responses: map[string]string{
		"pdbedit -L -v":                          testUserListing,
		"systemctl status smbd.service --no-pager": testServiceStatus,
		"testparm -s " + confPath:                 "Loaded services file OK.\n",
	}}

	shareStore := shares.NewStore(confPath, filepath.Join(dir, "backups"), l)
	mountStore := mounts.NewStoreWithRunner(mounts.Config{
		FstabPath:      fstabPath,
		CredentialsDir: filepath.Join(dir, "credentials"),
		ProcMountsPath: procPath,
		BackupDir:      filepath.Join(dir, "backups"),
	}, runner, l)
	userManager := users.NewManagerWithRunner(runner, l)
	gateway := samba.NewGatewayWithRunner("smbd", confPath, runner, l)

	handler, err := NewHandler(shareStore, mountStore, userManager, gateway, "test-secret", l)
	require.NoError(t, err)

	engine := gin.New()
	registerRoutes(engine, handler)

	return &testPanel{
		engine:    engine,
		handler:   handler,
		runner:    runner,
		confPath:  confPath,
		fstabPath: fstabPath,
		dir:       dir,
	}
}

func (p *testPanel) do(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	p.engine.ServeHTTP(w, req)
	return w
}

func (p *testPanel) postForm(form url.Values) *httptest.ResponseRecorder {
	body := bytes.NewBufferString(form.Encode())
	return p.do(http.MethodPost, "/", body, "application/x-www-form-urlencoded")
}

func TestPanel_Render(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	page := w.Body.String()
	assert.Contains(t, page, "Samba Control Center")
	assert.Contains(t, page, "docs")
	assert.Contains(t, page, "/mnt/media")
	assert.Contains(t, page, "alice")
	assert.Contains(t, page, "smbd.service active")
}

func TestPanel_AddShare(t *testing.T) {
	panel := setupTestPanel(t)

	form := url.Values{}
	form.Set("action", "add_share")
	form.Set("share_name", "media")
	form.Set("path", "/srv/media")

	w := panel.postForm(form)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	data, err := os.ReadFile(panel.confPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[media]")

	// Outcome is flashed for the next render
	cookies := w.Result().Cookies()
	var flashValue string
	for _, cookie := range cookies {
		if cookie.Name == flashCookieName {
			flashValue = cookie.Value
		}
	}
	require.NotEmpty(t, flashValue)
	message, ok := panel.handler.flash.verify(flashValue)
	require.True(t, ok)
	assert.Contains(t, message, "media")
}

func TestPanel_UnknownAction(t *testing.T) {
	panel := setupTestPanel(t)

	form := url.Values{}
	form.Set("action", "self_destruct")

	w := panel.postForm(form)
	// Panel posts always land back on the page; the error rides the flash
	require.Equal(t, http.StatusSeeOther, w.Code)

	before, err := os.ReadFile(panel.confPath)
	require.NoError(t, err)
	assert.Equal(t, testSmbConf, string(before))
}

func TestPanel_RestartService(t *testing.T) {
	panel := setupTestPanel(t)

	form := url.Values{}
	form.Set("action", "restart_service")

	w := panel.postForm(form)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var sawRestart bool
	for _, call := range panel.runner.calls {
		if len(call) >= 2 && call[0] == "systemctl" && call[1] == "restart" {
			sawRestart = true
			assert.Equal(t, "smbd.service", call[2])
		}
	}
	assert.True(t, sawRestart)
}

func TestAPI_ListShares(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodGet, "/api/v1/shares", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	result := resp.Result.(map[string]interface{})
	assert.Equal(t, float64(1), result["count"])
}

func TestAPI_AddShare(t *testing.T) {
	panel := setupTestPanel(t)

	body, err := json.Marshal(shares.NewShare("projects", "/srv/projects"))
	require.NoError(t, err)

	w := panel.do(http.MethodPost, "/api/v1/shares", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)

	data, err := os.ReadFile(panel.confPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[projects]")
}

func TestAPI_AddShare_Conflict(t *testing.T) {
	panel := setupTestPanel(t)

	body, err := json.Marshal(shares.NewShare("docs", "/elsewhere"))
	require.NoError(t, err)

	w := panel.do(http.MethodPost, "/api/v1/shares", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusConflict, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SHARES", resp.Error.Domain)
}

func TestAPI_DeleteShare(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodDelete, "/api/v1/shares/docs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	data, err := os.ReadFile(panel.confPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "[docs]")
}

func TestAPI_DeleteShare_NotFound(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodDelete, "/api/v1/shares/nonexistent", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ListMounts(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodGet, "/api/v1/mounts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	result := resp.Result.(map[string]interface{})
	mountsList := result["mounts"].([]interface{})
	require.Len(t, mountsList, 1)

	entry := mountsList[0].(map[string]interface{})
	assert.Equal(t, "/mnt/media", entry["mountpoint"])
	assert.Equal(t, true, entry["is_mounted"])
}

func TestAPI_ListUsers(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodGet, "/api/v1/users", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	result := resp.Result.(map[string]interface{})
	assert.Equal(t, float64(1), result["count"])
}

func TestAPI_ServiceStatus(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodGet, "/api/v1/service/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	result := resp.Result.(map[string]interface{})
	assert.Equal(t, "running", result["state"])
}

func TestAPI_TestConfig(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodPost, "/api/v1/shares/config/test", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	result := resp.Result.(map[string]interface{})
	assert.Contains(t, result["output"], "Loaded services file OK")
}

func TestAPI_Health(t *testing.T) {
	panel := setupTestPanel(t)

	w := panel.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
