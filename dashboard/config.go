package main

import (
	"fmt"

	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// wipeBatchSize bounds each delete pass of the operational wipe
const wipeBatchSize = 100

// seedDefaultConfig fills empty house/type collections on first start
func seedDefaultConfig(db *gorm.DB) {
	var houseCount int64
	db.Model(&House{}).Count(&houseCount)
	if houseCount == 0 {
		for idx, name := range schema.DefaultHouses {
			db.Create(&House{Name: name, Order: idx})
		}
	}

	var typeCount int64
	db.Model(&TaskTypeConfig{}).Count(&typeCount)
	if typeCount == 0 {
		for idx, t := range schema.DefaultTaskTypes {
			db.Create(&TaskTypeConfig{
				Label:       t.Label,
				Value:       t.Value,
				Order:       idx,
				AutoRequest: t.AutoRequest,
			})
		}
	}
}

func (svc *dashSvc) listHouses() ([]House, error) {
	var houses []House
	err := svc.db.Order("`order` ASC").Find(&houses).Error
	return houses, errors.Wrap(err, "failed to list houses")
}

func (svc *dashSvc) listTaskTypes() ([]TaskTypeConfig, error) {
	var types []TaskTypeConfig
	err := svc.db.Order("`order` ASC").Find(&types).Error
	return types, errors.Wrap(err, "failed to list task types")
}

// reorderHouses writes order 0..N-1 following the given name sequence in one
// transaction; unknown names are skipped
func (svc *dashSvc) reorderHouses(names []string) error {
	return errors.Wrap(svc.db.Transaction(func(tx *gorm.DB) error {
		for idx, name := range names {
			if err := tx.Model(&House{}).Where("name = ?", name).
				Update("order", idx).Error; err != nil {
				return err
			}
		}
		return nil
	}), "failed to reorder houses")
}

// reorderTaskTypes does the same for task types, keyed by value
func (svc *dashSvc) reorderTaskTypes(values []string) error {
	return errors.Wrap(svc.db.Transaction(func(tx *gorm.DB) error {
		for idx, value := range values {
			if err := tx.Model(&TaskTypeConfig{}).Where("value = ?", value).
				Update("order", idx).Error; err != nil {
				return err
			}
		}
		return nil
	}), "failed to reorder task types")
}

// restoreDefaults wipes all houses and task types and reinserts the built-in
// sets with sequential order. Destructive reset, not a merge.
func (svc *dashSvc) restoreDefaults(actor *User) error {
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&House{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&TaskTypeConfig{}).Error; err != nil {
			return err
		}
		for idx, name := range schema.DefaultHouses {
			if err := tx.Create(&House{Name: name, Order: idx}).Error; err != nil {
				return err
			}
		}
		for idx, t := range schema.DefaultTaskTypes {
			if err := tx.Create(&TaskTypeConfig{
				Label:       t.Label,
				Value:       t.Value,
				Order:       idx,
				AutoRequest: t.AutoRequest,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to restore defaults")
	}
	svc.addLog(actor, schema.SystemTaskRef, "Configuração",
		"Casas e tipos de pendência restaurados para o padrão")
	return nil
}

// addPixKey stores a reusable payout destination
func (svc *dashSvc) addPixKey(actor *User, key PixKey) (*PixKey, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	if err := svc.db.Create(&key).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create pix key")
	}
	svc.addLog(actor, schema.SystemTaskRef, "Configuração: Pix",
		fmt.Sprintf("Adicionou chave Pix: %s (%s)", key.Name, key.Bank))
	return &key, nil
}

func (svc *dashSvc) removePixKey(actor *User, keyId string) error {
	var key PixKey
	result := svc.db.First(&key, "public_id = ?", keyId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Pix key %s not found, ignoring removal", keyId)
		return nil
	}
	if err := svc.db.Unscoped().Delete(&key).Error; err != nil {
		return errors.Wrap(err, "failed to remove pix key")
	}
	svc.addLog(actor, schema.SystemTaskRef, "Configuração: Pix",
		fmt.Sprintf("Removeu chave Pix: %s", key.Name))
	return nil
}

func (svc *dashSvc) listPixKeys() ([]PixKey, error) {
	var keys []PixKey
	err := svc.db.Order("name ASC").Find(&keys).Error
	return keys, errors.Wrap(err, "failed to list pix keys")
}

// setDefaultPixKey stores the acting user's preferred payout destination
func (svc *dashSvc) setDefaultPixKey(actor *User, keyId string) error {
	result := svc.db.Model(&User{}).Where("public_id = ?", actor.PublicId).
		Update("default_pix_key_id", keyId)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set default pix key")
	}
	svc.addLog(actor, schema.SystemTaskRef, "Configuração: Usuário", "Alterou a chave Pix padrão")
	return nil
}

// updateUserRole changes another user's permission level
func (svc *dashSvc) updateUserRole(actor *User, userId string, newRole schema.UserRole) error {
	if newRole < schema.RoleAdmin || newRole > schema.RoleKFB {
		return &ValidationError{"unknown role"}
	}
	var target User
	result := svc.db.First(&target, "public_id = ?", userId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("User %s not found, ignoring role change", userId)
		return nil
	}
	if err := svc.db.Model(&target).Update("role_id", newRole).Error; err != nil {
		return errors.Wrap(err, "failed to update user role")
	}
	svc.addLog(actor, schema.SystemTaskRef, "Gestão de Usuários",
		fmt.Sprintf("Alterou cargo do usuário para %s", newRole))
	return nil
}

// clearOperationalData deletes every task, account, pack, log entry and pix
// key, paging through each collection in fixed-size batches until a pass
// comes back empty. Returns the total number of removed documents.
func (svc *dashSvc) clearOperationalData() (int64, error) {
	var total int64

	wipe := func(model interface{}) error {
		for {
			var ids []uint
			if err := svc.db.Model(model).Limit(wipeBatchSize).Pluck("id", &ids).Error; err != nil {
				return err
			}
			if len(ids) == 0 {
				return nil
			}
			err := svc.db.Transaction(func(tx *gorm.DB) error {
				return tx.Unscoped().Where("id IN ?", ids).Delete(model).Error
			})
			if err != nil {
				return err
			}
			total += int64(len(ids))
		}
	}

	for _, model := range []interface{}{&Task{}, &Account{}, &Pack{}, &LogEntry{}, &PixKey{}} {
		if err := wipe(model); err != nil {
			return total, errors.Wrap(err, "failed to clear operational data")
		}
	}
	svc.logger.Infof("Operational data cleared, %d documents removed", total)
	return total, nil
}

// listLogs renders the activity history, newest first
func (svc *dashSvc) listLogs() ([]LogEntry, error) {
	var logs []LogEntry
	err := svc.db.Order("timestamp DESC").Find(&logs).Error
	return logs, errors.Wrap(err, "failed to list logs")
}
