package main

import (
	"net/http"

	"github.com/gilbertoneto04/betmanagerpro/common"
	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/labstack/echo/v4"
)

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, common.FromKeysAndValues("error", "forbidden"))
}

func notConfirmed(c echo.Context) error {
	return c.JSON(http.StatusBadRequest,
		common.FromKeysAndValues("error", "destructive operation requires confirm=true"))
}

// respond maps an engine result to the wire: validation failures are 400,
// anything else that went wrong is 500, a no-op or success is plain ok
func (svc *dashSvc) respond(c echo.Context, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, common.FromKeysAndValues("result", "ok"))
	}
	if IsValidation(err) {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	svc.logger.Error(err)
	return c.JSON(http.StatusInternalServerError, common.FromKeysAndValues("error", "operation failed"))
}

// --- tasks ---

func (svc *dashSvc) getTasks(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actTaskCreate)
	if !userIsAllowed {
		return forbidden(c)
	}
	tasks, err := svc.listTasks()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (svc *dashSvc) newTask(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actTaskCreate)
	if !userIsAllowed {
		return forbidden(c)
	}
	var task Task
	if err := getBodyInto(c, &task); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	created, err := svc.createTask(user, task)
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (svc *dashSvc) setTaskStatus(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actTaskStatus)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		Status  schema.TaskStatus `json:"status"`
		AgentId string            `json:"agentId"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.applyTaskStatus(user, c.Param("tid"), req.Status, req.AgentId))
}

func (svc *dashSvc) patchTask(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actTaskEdit)
	if !userIsAllowed {
		return forbidden(c)
	}
	var updates TaskUpdate
	if err := getBodyInto(c, &updates); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.editTask(user, c.Param("tid"), updates))
}

func (svc *dashSvc) postReorderTasks(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actTaskReorder)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		DraggedId string `json:"draggedId"`
		TargetId  string `json:"targetId"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.reorderTasks(req.DraggedId, req.TargetId))
}

func (svc *dashSvc) postDeleteTask(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actTaskDelete)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.deleteTask(user, c.Param("tid"), req.Reason))
}

func (svc *dashSvc) postFinishDelivery(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actTaskFinishNew)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		Accounts []DeliveredAccount `json:"accounts"`
		PackId   string             `json:"packId"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.finishNewAccountDelivery(user, c.Param("tid"), req.Accounts, req.PackId))
}

// --- accounts ---

func (svc *dashSvc) getAccounts(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actAccountSave)
	if !userIsAllowed {
		return forbidden(c)
	}
	accounts, err := svc.listAccounts(schema.AccountStatus(c.QueryParam("status")))
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, accounts)
}

func (svc *dashSvc) postSaveAccount(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actAccountSave)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		Account
		PackIdToDeduct string `json:"packIdToDeduct"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	saved, err := svc.saveAccount(user, req.Account, req.PackIdToDeduct)
	if err != nil {
		return svc.respond(c, err)
	}
	if saved == nil {
		return c.JSON(http.StatusOK, common.FromKeysAndValues("result", "ok"))
	}
	return c.JSON(http.StatusOK, saved)
}

func (svc *dashSvc) postLimitAccount(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actAccountLimit)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		CreateWithdrawal bool   `json:"createWithdrawal"`
		PixInfo          string `json:"pixInfo"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.limitAccount(user, c.Param("aid"), req.CreateWithdrawal, req.PixInfo))
}

func (svc *dashSvc) postMarkReplacement(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actAccountReplace)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		CreateWithdrawal bool   `json:"createWithdrawal"`
		PixInfo          string `json:"pixInfo"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.markReplacement(user, c.Param("aid"), req.CreateWithdrawal, req.PixInfo))
}

func (svc *dashSvc) postReactivateAccount(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actAccountReactivate)
	if !userIsAllowed {
		return forbidden(c)
	}
	return svc.respond(c, svc.reactivate(user, c.Param("aid")))
}

func (svc *dashSvc) postDeleteAccount(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actAccountDelete)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.deleteAccount(user, c.Param("aid"), req.Reason))
}

func (svc *dashSvc) postPurgeAccount(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actAccountHardDelete)
	if !userIsAllowed {
		return forbidden(c)
	}
	if c.QueryParam("confirm") != "true" {
		return notConfirmed(c)
	}
	return svc.respond(c, svc.hardDelete(user, c.Param("aid")))
}

func (svc *dashSvc) postWithdrawForAccount(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actAccountWithdraw)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		PixInfo string `json:"pixInfo"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.createWithdrawalForAccount(user, c.Param("aid"), req.PixInfo))
}

// --- packs ---

func (svc *dashSvc) getPacks(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actPackView)
	if !userIsAllowed {
		return forbidden(c)
	}
	packs, err := svc.listPacks()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, packs)
}

func (svc *dashSvc) newPack(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actPackCreate)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		House    string  `json:"house"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	pack, err := svc.createPack(user, req.House, req.Quantity, req.Price)
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, pack)
}

func (svc *dashSvc) patchPack(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actPackEdit)
	if !userIsAllowed {
		return forbidden(c)
	}
	var updates PackUpdate
	if err := getBodyInto(c, &updates); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.editPack(user, c.Param("pid"), updates))
}

// --- history & insights ---

func (svc *dashSvc) getLogs(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actHistoryView)
	if !userIsAllowed {
		return forbidden(c)
	}
	logs, err := svc.listLogs()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func (svc *dashSvc) getInsights(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actInsightsView)
	if !userIsAllowed {
		return forbidden(c)
	}
	report, err := svc.buildInsights()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// --- configuration ---

func (svc *dashSvc) getHouses(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actConfigView)
	if !userIsAllowed {
		return forbidden(c)
	}
	houses, err := svc.listHouses()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, houses)
}

func (svc *dashSvc) getTaskTypes(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actConfigView)
	if !userIsAllowed {
		return forbidden(c)
	}
	types, err := svc.listTaskTypes()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, types)
}

func (svc *dashSvc) postReorderHouses(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actConfigReorder)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		Names []string `json:"names"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.reorderHouses(req.Names))
}

func (svc *dashSvc) postReorderTaskTypes(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actConfigReorder)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		Values []string `json:"values"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.reorderTaskTypes(req.Values))
}

func (svc *dashSvc) postRestoreDefaults(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actConfigRestore)
	if !userIsAllowed {
		return forbidden(c)
	}
	if c.QueryParam("confirm") != "true" {
		return notConfirmed(c)
	}
	return svc.respond(c, svc.restoreDefaults(user))
}

func (svc *dashSvc) postClearOperationalData(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actConfigWipe)
	if !userIsAllowed {
		return forbidden(c)
	}
	if c.QueryParam("confirm") != "true" {
		return notConfirmed(c)
	}
	total, err := svc.clearOperationalData()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, common.FromKeysAndValues("deleted", total))
}

// --- pix keys & users ---

func (svc *dashSvc) getPixKeys(c echo.Context) error {
	userIsAllowed, _ := svc.checkAuth(c, actPixManage)
	if !userIsAllowed {
		return forbidden(c)
	}
	keys, err := svc.listPixKeys()
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, keys)
}

func (svc *dashSvc) newPixKey(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actPixManage)
	if !userIsAllowed {
		return forbidden(c)
	}
	var key PixKey
	if err := getBodyInto(c, &key); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	created, err := svc.addPixKey(user, key)
	if err != nil {
		return svc.respond(c, err)
	}
	return c.JSON(http.StatusOK, created)
}

func (svc *dashSvc) postRemovePixKey(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actPixManage)
	if !userIsAllowed {
		return forbidden(c)
	}
	return svc.respond(c, svc.removePixKey(user, c.Param("kid")))
}

func (svc *dashSvc) postDefaultPixKey(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actUserPrefs)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		KeyId string `json:"keyId"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.setDefaultPixKey(user, req.KeyId))
}

func (svc *dashSvc) postUserRole(c echo.Context) error {
	userIsAllowed, user := svc.checkAuth(c, actUserRole)
	if !userIsAllowed {
		return forbidden(c)
	}
	var req struct {
		RoleId schema.UserRole `json:"roleId"`
	}
	if err := getBodyInto(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, common.FromKeysAndValues("error", err.Error()))
	}
	return svc.respond(c, svc.updateUserRole(user, c.Param("uid"), req.RoleId))
}
