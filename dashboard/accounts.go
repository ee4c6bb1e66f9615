package main

import (
	"fmt"
	"time"

	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// createWithdrawalTask synthesizes a SAQUE task against the account
func (svc *dashSvc) createWithdrawalTask(actor *User, account *Account, description string, pixInfo string) error {
	_, err := svc.createTask(actor, Task{
		Type:        schema.TypeWithdrawal,
		House:       account.House,
		AccountName: account.Name,
		Description: description,
		PixKeyInfo:  pixInfo,
		Status:      schema.TaskPending,
	})
	return err
}

// limitAccount marks the account LIMITED, optionally opening a withdrawal
// task with the supplied payout snapshot
func (svc *dashSvc) limitAccount(actor *User, accountId string, createWithdrawal bool, pixInfo string) error {
	var account Account
	result := svc.db.First(&account, "public_id = ?", accountId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Account %s not found, ignoring limit", accountId)
		return nil
	}

	now := time.Now().UTC()
	account.Status = schema.AccountLimited
	account.LimitedAt = &now
	if err := svc.db.Save(&account).Error; err != nil {
		return errors.Wrap(err, "failed to limit account")
	}

	if createWithdrawal {
		if err := svc.createWithdrawalTask(actor, &account,
			"Gerado automaticamente ao limitar conta.", pixInfo); err != nil {
			return err
		}
	}
	svc.addLog(actor, account.PublicId, fmt.Sprintf("Conta %s", account.Name), "Conta marcada como LIMITADA.")
	svc.notifyAsync("AccountUpdated", account)
	return nil
}

// markReplacement sends the account to the replacement queue. An account
// drawn from a pack gives its slot back first: the pack's delivered count
// drops by one and the pack reopens even when it was COMPLETED.
func (svc *dashSvc) markReplacement(actor *User, accountId string, createWithdrawal bool, pixInfo string) error {
	var account Account
	result := svc.db.First(&account, "public_id = ?", accountId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Account %s not found, ignoring replacement", accountId)
		return nil
	}

	if account.PackId != "" {
		if err := svc.revertDelivered(account.PackId); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	account.Status = schema.AccountReplacement
	account.ReplacementAt = &now
	if err := svc.db.Save(&account).Error; err != nil {
		return errors.Wrap(err, "failed to mark account for replacement")
	}

	if createWithdrawal {
		if err := svc.createWithdrawalTask(actor, &account,
			"Gerado automaticamente (Conta para Reposição).", pixInfo); err != nil {
			return err
		}
	}
	svc.addLog(actor, account.PublicId, fmt.Sprintf("Conta %s", account.Name), "Marcada para REPOSIÇÃO.")
	svc.notifyAsync("AccountUpdated", account)
	return nil
}

// reactivate returns a limited, replacement or deleted account to ACTIVE.
// No pack interaction: the account stays spent inventory.
func (svc *dashSvc) reactivate(actor *User, accountId string) error {
	var account Account
	result := svc.db.First(&account, "public_id = ?", accountId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Account %s not found, ignoring reactivation", accountId)
		return nil
	}

	account.Status = schema.AccountActive
	account.DeletionReason = ""
	if err := svc.db.Save(&account).Error; err != nil {
		return errors.Wrap(err, "failed to reactivate account")
	}
	svc.addLog(actor, account.PublicId, fmt.Sprintf("Conta %s", account.Name),
		"Conta restaurada/reativada (Movida para Ativas).")
	svc.notifyAsync("AccountUpdated", account)
	return nil
}

// deleteAccount soft-deletes, keeping the row recoverable via reactivate
func (svc *dashSvc) deleteAccount(actor *User, accountId string, reason string) error {
	var account Account
	result := svc.db.First(&account, "public_id = ?", accountId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Account %s not found, ignoring delete", accountId)
		return nil
	}

	account.Status = schema.AccountDeleted
	account.DeletionReason = reason
	if err := svc.db.Save(&account).Error; err != nil {
		return errors.Wrap(err, "failed to delete account")
	}

	if reason == "" {
		reason = schema.ReasonNotInformed
	}
	svc.addLog(actor, account.PublicId, fmt.Sprintf("Conta %s", account.Name),
		fmt.Sprintf("Conta excluída. Motivo: %s", reason))
	svc.notifyAsync("AccountUpdated", account)
	return nil
}

// hardDelete removes the document for good; the log entry is system-level
// because the account is gone
func (svc *dashSvc) hardDelete(actor *User, accountId string) error {
	var account Account
	result := svc.db.First(&account, "public_id = ?", accountId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Account %s not found, ignoring permanent delete", accountId)
		return nil
	}

	if err := svc.db.Unscoped().Delete(&account).Error; err != nil {
		return errors.Wrap(err, "failed to permanently delete account")
	}
	svc.addLog(actor, schema.SystemTaskRef, "Conta Excluída Permanentemente",
		fmt.Sprintf("ID: %s removido definitivamente.", accountId))
	svc.notifyAsync("AccountRemoved", account)
	return nil
}

// saveAccount handles both the create and the edit path. Editing diffs
// name/house against the stored row; a change cascades into every task that
// still referenced the old snapshot, rewritten in one transaction. Creating
// with a pack bumps that pack's delivered count by one; non-admin actors
// must draw ACTIVE-status accounts from a pack with remaining capacity.
func (svc *dashSvc) saveAccount(actor *User, account Account, packIdToDeduct string) (*Account, error) {
	if err := account.validate(); err != nil {
		return nil, err
	}

	if account.PublicId != "" {
		var stored Account
		result := svc.db.First(&stored, "public_id = ?", account.PublicId)
		if result.RowsAffected != 1 {
			svc.logger.Debugf("Account %s not found, ignoring save", account.PublicId)
			return nil, nil
		}

		oldName := stored.Name
		oldHouse := stored.House

		stored.Name = account.Name
		stored.Username = account.Username
		stored.Email = account.Email
		stored.Password = account.Password
		stored.Card = account.Card
		stored.House = account.House
		stored.DepositValue = account.DepositValue
		stored.Owner = account.Owner
		stored.Tags = account.Tags
		if err := svc.db.Save(&stored).Error; err != nil {
			return nil, errors.Wrap(err, "failed to update account")
		}

		if oldName != stored.Name || oldHouse != stored.House {
			count, err := svc.syncTasksWithAccount(oldName, oldHouse, stored.Name, stored.House)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				svc.addLog(actor, stored.PublicId,
					fmt.Sprintf("Sincronização - %s", stored.Name),
					fmt.Sprintf("Atualizou %d pendências antigas para a nova casa/nome.", count))
			}
		}
		svc.addLog(actor, stored.PublicId, fmt.Sprintf("Conta %s", stored.Name),
			"Dados da conta atualizados manualmente")
		svc.notifyAsync("AccountUpdated", stored)
		return &stored, nil
	}

	if account.Status == schema.AccountActive && packIdToDeduct == "" && actor.RoleID != schema.RoleAdmin {
		return nil, &ValidationError{"selecione um pack ativo com saldo para cadastrar conta ativa"}
	}
	if packIdToDeduct != "" {
		var pack Pack
		result := svc.db.First(&pack, "public_id = ?", packIdToDeduct)
		if result.RowsAffected != 1 {
			return nil, &ValidationError{"pack não encontrado"}
		}
		if actor.RoleID != schema.RoleAdmin && (pack.Status != schema.PackActive || pack.Delivered >= pack.Quantity) {
			return nil, &ValidationError{"o pack selecionado não possui saldo disponível"}
		}
		account.PackId = packIdToDeduct
	}

	if err := svc.db.Create(&account).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create account")
	}
	if packIdToDeduct != "" {
		if err := svc.bumpDelivered(packIdToDeduct, 1); err != nil {
			return nil, err
		}
	}
	svc.addLog(actor, account.PublicId, fmt.Sprintf("Conta %s", account.Name),
		fmt.Sprintf("Conta cadastrada manualmente (%s)", account.Status))
	svc.notifyAsync("AccountCreated", account)
	return &account, nil
}

// syncTasksWithAccount rewrites the name/house snapshot of every task still
// pointing at the old values, atomically, and returns how many were touched
func (svc *dashSvc) syncTasksWithAccount(oldName, oldHouse, newName, newHouse string) (int64, error) {
	var count int64
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Task{}).
			Where("account_name = ? AND house = ?", oldName, oldHouse).
			Updates(map[string]interface{}{"account_name": newName, "house": newHouse})
		count = result.RowsAffected
		return result.Error
	})
	return count, errors.Wrap(err, "failed to resync tasks with account")
}

// createWithdrawalForAccount opens a manual SAQUE request for a limited or
// replacement account and touches the account to reflect the activity
func (svc *dashSvc) createWithdrawalForAccount(actor *User, accountId string, pixInfo string) error {
	var account Account
	result := svc.db.First(&account, "public_id = ?", accountId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Account %s not found, ignoring withdrawal request", accountId)
		return nil
	}

	context := "Conta"
	switch account.Status {
	case schema.AccountLimited:
		context = "Conta Limitada"
	case schema.AccountReplacement:
		context = "Conta Reposição"
	}
	if err := svc.createWithdrawalTask(actor, &account,
		fmt.Sprintf("Solicitação de saque manual (%s).", context), pixInfo); err != nil {
		return err
	}

	svc.db.Model(&account).Update("updated_at", time.Now().UTC())
	svc.addLog(actor, account.PublicId, fmt.Sprintf("Conta %s", account.Name),
		fmt.Sprintf("Solicitou saque em conta %s.", account.Status))
	return nil
}

// listAccounts returns accounts, optionally filtered by status
func (svc *dashSvc) listAccounts(status schema.AccountStatus) ([]Account, error) {
	var accounts []Account
	q := svc.db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&accounts).Error
	return accounts, errors.Wrap(err, "failed to list accounts")
}
