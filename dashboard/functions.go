package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Action names evaluated against the policy table at handler entry
const (
	actTaskCreate        = "task.create"
	actTaskStatus        = "task.status"
	actTaskEdit          = "task.edit"
	actTaskReorder       = "task.reorder"
	actTaskDelete        = "task.delete"
	actTaskFinishNew     = "task.finishNewAccounts"
	actAccountSave       = "account.save"
	actAccountLimit      = "account.limit"
	actAccountReplace    = "account.replacement"
	actAccountReactivate = "account.reactivate"
	actAccountDelete     = "account.delete"
	actAccountHardDelete = "account.hardDelete"
	actAccountWithdraw   = "account.withdraw"
	actPackCreate        = "pack.create"
	actPackEdit          = "pack.edit"
	actPackView          = "pack.view"
	actHistoryView       = "history.view"
	actInsightsView      = "insights.view"
	actConfigView        = "config.view"
	actConfigReorder     = "config.reorder"
	actConfigRestore     = "config.restore"
	actConfigWipe        = "config.wipe"
	actPixManage         = "pix.manage"
	actUserPrefs         = "user.prefs"
	actUserRole          = "user.role"
)

var anyRole = []schema.UserRole{schema.RoleAdmin, schema.RoleUser, schema.RoleAgency, schema.RoleKFB}
var adminOnly = []schema.UserRole{schema.RoleAdmin}

// policy maps action -> roles allowed to perform it. Checked once per
// request in checkAuth, never inline in the engines.
var policy = map[string][]schema.UserRole{
	actTaskCreate:        anyRole,
	actTaskStatus:        anyRole,
	actTaskEdit:          anyRole,
	actTaskReorder:       anyRole,
	actTaskDelete:        anyRole,
	actTaskFinishNew:     anyRole,
	actAccountSave:       anyRole,
	actAccountLimit:      anyRole,
	actAccountReplace:    anyRole,
	actAccountReactivate: anyRole,
	actAccountDelete:     anyRole,
	actAccountHardDelete: adminOnly,
	actAccountWithdraw:   anyRole,
	actPackCreate:        {schema.RoleAdmin, schema.RoleUser},
	actPackEdit:          adminOnly,
	actPackView:          anyRole,
	actHistoryView:       {schema.RoleAdmin, schema.RoleKFB},
	actInsightsView:      adminOnly,
	actConfigView:        {schema.RoleAdmin, schema.RoleUser, schema.RoleKFB},
	actConfigReorder:     {schema.RoleAdmin, schema.RoleUser, schema.RoleKFB},
	actConfigRestore:     adminOnly,
	actConfigWipe:        adminOnly,
	actPixManage:         {schema.RoleAdmin, schema.RoleUser, schema.RoleKFB},
	actUserPrefs:         anyRole,
	actUserRole:          adminOnly,
}

// allowed reports whether role may perform action
func allowed(action string, role schema.UserRole) bool {
	for _, r := range policy[action] {
		if r == role {
			return true
		}
	}
	return false
}

// checkAuth verifies the bearer token against the Auth service, resolves the
// local user row and evaluates the policy table for the requested action
func (svc *dashSvc) checkAuth(c echo.Context, action string) (bool, *User) {
	var authHeader string
	if c.Request().Header["Authorization"] != nil {
		authHeader = c.Request().Header["Authorization"][0]
	}
	if authHeader == "" {
		return false, nil
	}
	sub, err := svc.verifyAuth(authHeader)
	if err != nil {
		svc.logger.Infof("Auth failed: %s", err)
		return false, nil
	}
	user := svc.resolveUser(sub)
	if !allowed(action, user.RoleID) {
		return false, nil
	}
	return true, user
}

// verifyAuth sends request to Auth service to check token, returns public identifier of authenticated user
func (svc *dashSvc) verifyAuth(authz string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/verify", svc.authServer), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", authz)
	resp, err := svc.authHttpClient.Do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.New("authentication failed")
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	var ver AuthVerification
	err = json.Unmarshal(body, &ver)
	if err != nil || ver.PublicId == "" {
		return "", errors.New("bad answer from auth service")
	}
	return ver.PublicId, nil
}

// resolveUser returns the synced user row for a verified identity. A token
// that verifies but has no local row yet gets a minimal lowest-privilege
// profile instead of a failure.
func (svc *dashSvc) resolveUser(publicId string) *User {
	var userFromDb User
	result := svc.db.First(&userFromDb, "public_id = ?", publicId)
	if result.RowsAffected == 1 {
		return &userFromDb
	}
	svc.logger.Infof("No local profile for %s yet, using default", publicId)
	return &User{
		PublicId: publicId,
		Login:    publicId,
		RoleID:   schema.RoleUser,
	}
}

// addLog appends an activity log entry. Log failures never propagate to the
// operation being described: they are reported to the service log only.
func (svc *dashSvc) addLog(actor *User, taskRef string, taskDesc string, action string) {
	if taskRef == "" {
		taskRef = schema.SystemTaskRef
	}
	entry := LogEntry{
		TaskRef:         taskRef,
		TaskDescription: taskDesc,
		Action:          action,
		User:            actor.DisplayName(),
		Timestamp:       time.Now().UTC(),
	}
	if err := svc.db.Create(&entry).Error; err != nil {
		svc.logger.Errorf("Failed to append log entry %q: %s", action, err)
	}
}

// typeLabel resolves the configured label of a task type value
func (svc *dashSvc) typeLabel(value string) string {
	var cfg TaskTypeConfig
	result := svc.db.First(&cfg, "value = ?", value)
	if result.RowsAffected == 1 {
		return cfg.Label
	}
	return value
}

// getBodyInto decodes a JSON request body into target
func getBodyInto(c echo.Context, target interface{}) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errors.Wrap(err, "failed to get request body")
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.Wrap(err, "failed to process request body")
	}
	return nil
}
