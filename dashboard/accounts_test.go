package main

import (
	"strings"
	"testing"

	"github.com/gilbertoneto04/betmanagerpro/schema"
)

func TestSaveAccountRequiresPackForNonAdmins(t *testing.T) {
	svc := newTestSvc(t)
	user := userActor()

	account := Account{Name: "acc-1", House: "Bet365", Email: "a@x.com", Status: schema.AccountActive}
	_, err := svc.saveAccount(user, account, "")
	if !IsValidation(err) {
		t.Fatalf("non-admin active account without pack should fail, got %v", err)
	}

	// admins may register active accounts off-pack
	saved, err := svc.saveAccount(adminActor(), account, "")
	if err != nil {
		t.Fatalf("saveAccount as admin: %s", err)
	}
	if saved.PackId != "" {
		t.Errorf("off-pack account must not reference a pack")
	}

	// non-admins may register non-active accounts off-pack
	limited := Account{Name: "acc-2", House: "Bet365", Email: "b@x.com", Status: schema.AccountLimited}
	if _, err := svc.saveAccount(user, limited, ""); err != nil {
		t.Fatalf("saveAccount limited as user: %s", err)
	}
}

func TestSaveAccountDeductsFromPack(t *testing.T) {
	svc := newTestSvc(t)
	user := userActor()
	pack, _ := svc.createPack(adminActor(), "Betano", 2, 100)

	account := Account{Name: "acc-1", House: "Betano", Email: "a@x.com", Status: schema.AccountActive}
	saved, err := svc.saveAccount(user, account, pack.PublicId)
	if err != nil {
		t.Fatalf("saveAccount: %s", err)
	}
	if saved.PackId != pack.PublicId {
		t.Errorf("created account should carry the pack id")
	}

	var fromDb Pack
	svc.db.First(&fromDb, "public_id = ?", pack.PublicId)
	if fromDb.Delivered != 1 {
		t.Errorf("pack delivered should rise by one, got %d", fromDb.Delivered)
	}

	// exhaust the pack, then a user draw must fail
	svc.saveAccount(user, Account{Name: "acc-2", House: "Betano", Email: "b@x.com", Status: schema.AccountActive}, pack.PublicId)
	_, err = svc.saveAccount(user, Account{Name: "acc-3", House: "Betano", Email: "c@x.com", Status: schema.AccountActive}, pack.PublicId)
	if !IsValidation(err) {
		t.Errorf("drawing from an exhausted pack should fail for users, got %v", err)
	}

	_, err = svc.saveAccount(user, Account{Name: "acc-4", House: "Betano", Email: "d@x.com", Status: schema.AccountActive}, "ghost")
	if !IsValidation(err) {
		t.Errorf("drawing from an unknown pack should fail, got %v", err)
	}
}

func TestEditAccountCascadesRename(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()

	account := Account{Name: "old-name", House: "Bet365", Email: "a@x.com", Status: schema.AccountActive}
	saved, err := svc.saveAccount(admin, account, "")
	if err != nil {
		t.Fatalf("saveAccount: %s", err)
	}

	svc.createTask(admin, Task{Type: schema.TypeSMS, House: "Bet365", AccountName: "old-name"})
	svc.createTask(admin, Task{Type: schema.TypeDeposit, House: "Bet365", AccountName: "old-name"})
	other, _ := svc.createTask(admin, Task{Type: schema.TypeSMS, House: "Bet365", AccountName: "unrelated"})

	saved.Name = "new-name"
	saved.House = "Betano"
	if _, err := svc.saveAccount(admin, *saved, ""); err != nil {
		t.Fatalf("saveAccount rename: %s", err)
	}

	var rewritten int64
	svc.db.Model(&Task{}).Where("account_name = ? AND house = ?", "new-name", "Betano").Count(&rewritten)
	if rewritten != 2 {
		t.Fatalf("expected 2 tasks rewritten, got %d", rewritten)
	}
	var untouched Task
	svc.db.First(&untouched, "public_id = ?", other.PublicId)
	if untouched.AccountName != "unrelated" || untouched.House != "Bet365" {
		t.Errorf("unrelated task must not be rewritten")
	}

	var sync LogEntry
	result := svc.db.Where("action LIKE ?", "%pendências antigas%").Order("created_at DESC").First(&sync)
	if result.RowsAffected != 1 || !strings.Contains(sync.Action, "2") {
		t.Errorf("sync log should state the rewrite count, got %q", sync.Action)
	}
}

func TestEditWithoutRenameSkipsSync(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()

	saved, _ := svc.saveAccount(admin, Account{Name: "acc", House: "KTO", Email: "a@x.com", Status: schema.AccountActive}, "")
	svc.createTask(admin, Task{Type: schema.TypeSMS, House: "KTO", AccountName: "acc"})

	saved.DepositValue = 55
	if _, err := svc.saveAccount(admin, *saved, ""); err != nil {
		t.Fatalf("saveAccount: %s", err)
	}

	var syncLogs int64
	svc.db.Model(&LogEntry{}).Where("action LIKE ?", "%pendências antigas%").Count(&syncLogs)
	if syncLogs != 0 {
		t.Errorf("same name/house edit must not trigger a task rewrite")
	}
}

func TestLimitAccountOpensWithdrawal(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()
	saved, _ := svc.saveAccount(admin, Account{Name: "acc", House: "Stake", Email: "a@x.com", Status: schema.AccountActive}, "")

	if err := svc.limitAccount(admin, saved.PublicId, true, "Chave: 123"); err != nil {
		t.Fatalf("limitAccount: %s", err)
	}

	var fromDb Account
	svc.db.First(&fromDb, "public_id = ?", saved.PublicId)
	if fromDb.Status != schema.AccountLimited || fromDb.LimitedAt == nil {
		t.Errorf("account should be LIMITED with a timestamp, got %s", fromDb.Status)
	}

	var withdrawal Task
	result := svc.db.First(&withdrawal, "type = ? AND account_name = ?", schema.TypeWithdrawal, "acc")
	if result.RowsAffected != 1 {
		t.Fatalf("limiting with withdrawal should open a SAQUE task")
	}
	if withdrawal.Status != schema.TaskPending || withdrawal.PixKeyInfo != "Chave: 123" {
		t.Errorf("withdrawal should be PENDENTE with the pix snapshot, got %s/%q",
			withdrawal.Status, withdrawal.PixKeyInfo)
	}
}

func TestDeleteAndReactivateAccount(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()
	saved, _ := svc.saveAccount(admin, Account{Name: "acc", House: "Bet365", Email: "a@x.com", Status: schema.AccountActive}, "")

	if err := svc.deleteAccount(admin, saved.PublicId, "conta duplicada"); err != nil {
		t.Fatalf("deleteAccount: %s", err)
	}
	var fromDb Account
	svc.db.First(&fromDb, "public_id = ?", saved.PublicId)
	if fromDb.Status != schema.AccountDeleted || fromDb.DeletionReason != "conta duplicada" {
		t.Fatalf("expected soft-deleted with reason, got %s/%q", fromDb.Status, fromDb.DeletionReason)
	}

	if err := svc.reactivate(admin, saved.PublicId); err != nil {
		t.Fatalf("reactivate: %s", err)
	}
	svc.db.First(&fromDb, "public_id = ?", saved.PublicId)
	if fromDb.Status != schema.AccountActive || fromDb.DeletionReason != "" {
		t.Errorf("reactivation should clear the deletion reason, got %s/%q",
			fromDb.Status, fromDb.DeletionReason)
	}
}

func TestHardDeleteRemovesRow(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()
	saved, _ := svc.saveAccount(admin, Account{Name: "acc", House: "Bet365", Email: "a@x.com", Status: schema.AccountActive}, "")

	if err := svc.hardDelete(admin, saved.PublicId); err != nil {
		t.Fatalf("hardDelete: %s", err)
	}

	var count int64
	svc.db.Unscoped().Model(&Account{}).Where("public_id = ?", saved.PublicId).Count(&count)
	if count != 0 {
		t.Fatalf("purged account must not survive, found %d rows", count)
	}

	var entry LogEntry
	svc.db.Order("created_at DESC").First(&entry)
	if entry.TaskRef != schema.SystemTaskRef || !strings.Contains(entry.Action, saved.PublicId) {
		t.Errorf("purge log should be system-level and name the id, got %q/%q", entry.TaskRef, entry.Action)
	}
}

func TestManualWithdrawalReflectsAccountStatus(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()
	saved, _ := svc.saveAccount(admin, Account{Name: "acc", House: "KTO", Email: "a@x.com", Status: schema.AccountActive}, "")
	svc.limitAccount(admin, saved.PublicId, false, "")

	if err := svc.createWithdrawalForAccount(admin, saved.PublicId, "manual-key"); err != nil {
		t.Fatalf("createWithdrawalForAccount: %s", err)
	}

	var withdrawal Task
	result := svc.db.First(&withdrawal, "type = ? AND account_name = ?", schema.TypeWithdrawal, "acc")
	if result.RowsAffected != 1 {
		t.Fatalf("manual withdrawal should open a SAQUE task")
	}
	if !strings.Contains(withdrawal.Description, "Conta Limitada") {
		t.Errorf("description should mention the limited state, got %q", withdrawal.Description)
	}
}

func TestListAccountsFiltersByStatus(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()
	a, _ := svc.saveAccount(admin, Account{Name: "a1", House: "Bet365", Email: "a@x.com", Status: schema.AccountActive}, "")
	svc.saveAccount(admin, Account{Name: "a2", House: "Bet365", Email: "b@x.com", Status: schema.AccountActive}, "")
	svc.limitAccount(admin, a.PublicId, false, "")

	limited, err := svc.listAccounts(schema.AccountLimited)
	if err != nil {
		t.Fatalf("listAccounts: %s", err)
	}
	if len(limited) != 1 || limited[0].Name != "a1" {
		t.Fatalf("expected only the limited account, got %d", len(limited))
	}

	all, err := svc.listAccounts("")
	if err != nil {
		t.Fatalf("listAccounts: %s", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both accounts, got %d", len(all))
	}
}
