package main

import (
	"fmt"
	"time"

	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// createTask validates and stores a new task. When no explicit status is
// given, auto-request types (per TaskTypeConfig) start as SOLICITADA and
// everything else as PENDENTE. OrderIndex defaults to the creation instant
// in unix milliseconds so newest tasks sort first.
func (svc *dashSvc) createTask(actor *User, task Task) (*Task, error) {
	if err := task.validate(); err != nil {
		return nil, err
	}

	if task.Status == "" {
		task.Status = schema.TaskPending
		var cfg TaskTypeConfig
		result := svc.db.First(&cfg, "value = ?", task.Type)
		if result.RowsAffected == 1 && cfg.AutoRequest {
			task.Status = schema.TaskRequested
		}
	}
	if !task.Status.Valid() {
		return nil, &ValidationError{"unknown task status"}
	}
	if task.OrderIndex == 0 {
		task.OrderIndex = time.Now().UnixMilli()
	}

	if err := svc.db.Create(&task).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create task")
	}

	svc.addLog(actor, task.PublicId,
		fmt.Sprintf("%s - %s", svc.typeLabel(task.Type), task.House),
		fmt.Sprintf("Pendência criada (%s)", task.Status.Label()))
	svc.notifyAsync("TaskCreated", task)
	return &task, nil
}

// applyTaskStatus moves a task to newStatus. Finishing stamps resolvedAt and
// finishedBy (the given agent, or the acting user). KFB actors must name the
// agency that performed the work. Unknown task ids are a silent no-op.
func (svc *dashSvc) applyTaskStatus(actor *User, taskId string, newStatus schema.TaskStatus, agentId string) error {
	if !newStatus.Valid() {
		return &ValidationError{"unknown task status"}
	}

	var task Task
	result := svc.db.First(&task, "public_id = ?", taskId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Task %s not found, ignoring status change", taskId)
		return nil
	}

	oldStatus := task.Status
	now := time.Now().UTC()
	task.Status = newStatus
	if newStatus == schema.TaskFinished {
		if actor.RoleID == schema.RoleKFB && agentId == "" {
			return &ValidationError{"selecione qual agência finalizou a tarefa"}
		}
		task.ResolvedAt = &now
		if agentId != "" {
			task.FinishedBy = agentId
		} else {
			task.FinishedBy = actor.PublicId
		}
	}
	if err := svc.db.Save(&task).Error; err != nil {
		return errors.Wrap(err, "failed to update task status")
	}

	// best-effort snapshot link: a rename desync just means no touch
	if task.AccountName != "" {
		var linked Account
		result = svc.db.First(&linked, "name = ? AND house = ?", task.AccountName, task.House)
		if result.RowsAffected == 1 {
			svc.db.Model(&linked).Update("updated_at", now)
		}
	}

	actionMsg := fmt.Sprintf("Status alterado: %s → %s", oldStatus.Label(), newStatus.Label())
	if agentId != "" {
		agentName := "Desconhecido"
		var agent User
		if svc.db.First(&agent, "public_id = ?", agentId).RowsAffected == 1 {
			agentName = agent.DisplayName()
		}
		actionMsg += fmt.Sprintf(" (Realizado por: %s)", agentName)
	}
	svc.addLog(actor, task.PublicId,
		fmt.Sprintf("%s - %s", svc.typeLabel(task.Type), task.House), actionMsg)
	svc.notifyAsync("TaskStatusChanged", task)
	return nil
}

// TaskUpdate carries the editable fields; nil means "leave unchanged"
type TaskUpdate struct {
	House       *string `json:"house"`
	AccountName *string `json:"accountName"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
	PixKeyInfo  *string `json:"pixKeyInfo"`
}

// editTask merges the provided fields into the task. A pix key change is
// logged distinctly from general edits.
func (svc *dashSvc) editTask(actor *User, taskId string, updates TaskUpdate) error {
	var task Task
	result := svc.db.First(&task, "public_id = ?", taskId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Task %s not found, ignoring edit", taskId)
		return nil
	}

	pixChanged := false
	if updates.House != nil {
		task.House = *updates.House
	}
	if updates.AccountName != nil {
		task.AccountName = *updates.AccountName
	}
	if updates.Quantity != nil {
		task.Quantity = *updates.Quantity
	}
	if updates.Description != nil {
		task.Description = *updates.Description
	}
	if updates.PixKeyInfo != nil && *updates.PixKeyInfo != task.PixKeyInfo {
		task.PixKeyInfo = *updates.PixKeyInfo
		pixChanged = true
	}

	if err := svc.db.Save(&task).Error; err != nil {
		return errors.Wrap(err, "failed to edit task")
	}
	if pixChanged {
		svc.addLog(actor, task.PublicId, fmt.Sprintf("Edição - %s", task.House), "Chave Pix atualizada.")
	}
	svc.notifyAsync("TaskEdited", task)
	return nil
}

// reorderTasks swaps the two tasks' orderIndex values atomically. Swapping
// is enough because display order is descending orderIndex, tie-broken by
// descending createdAt. Missing or identical ids are a no-op.
func (svc *dashSvc) reorderTasks(draggedId, targetId string) error {
	if draggedId == targetId {
		return nil
	}
	var dragged, target Task
	if svc.db.First(&dragged, "public_id = ?", draggedId).RowsAffected != 1 {
		return nil
	}
	if svc.db.First(&target, "public_id = ?", targetId).RowsAffected != 1 {
		return nil
	}

	return errors.Wrap(svc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Task{}).Where("public_id = ?", draggedId).
			Update("order_index", target.OrderIndex).Error; err != nil {
			return err
		}
		return tx.Model(&Task{}).Where("public_id = ?", targetId).
			Update("order_index", dragged.OrderIndex).Error
	}), "failed to reorder tasks")
}

// deleteTask soft-deletes: the task keeps its row with status EXCLUIDA and
// can be restored through the ordinary status path back to PENDENTE.
func (svc *dashSvc) deleteTask(actor *User, taskId string, reason string) error {
	var task Task
	result := svc.db.First(&task, "public_id = ?", taskId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Task %s not found, ignoring delete", taskId)
		return nil
	}

	task.Status = schema.TaskDeleted
	task.DeletionReason = reason
	if err := svc.db.Save(&task).Error; err != nil {
		return errors.Wrap(err, "failed to delete task")
	}

	if reason == "" {
		reason = schema.ReasonNotInformed
	}
	svc.addLog(actor, task.PublicId,
		fmt.Sprintf("%s - %s", svc.typeLabel(task.Type), task.House),
		fmt.Sprintf("Solicitação excluída. Motivo: %s", reason))
	svc.notifyAsync("TaskDeleted", task)
	return nil
}

// DeliveredAccount is one account handed over when fulfilling a CONTA_NOVA task
type DeliveredAccount struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	DepositValue float64 `json:"depositValue"`
}

// finishNewAccountDelivery fulfills a CONTA_NOVA task with the delivered
// accounts. Fewer accounts than requested is a partial delivery: the task
// stays open with the remainder as its quantity. A full delivery finishes
// the task. The task is never advanced when account creation fails.
func (svc *dashSvc) finishNewAccountDelivery(actor *User, taskId string, delivered []DeliveredAccount, packId string) error {
	var task Task
	result := svc.db.First(&task, "public_id = ?", taskId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Task %s not found, ignoring delivery", taskId)
		return nil
	}
	if len(delivered) == 0 {
		return &ValidationError{"delivery must contain at least one account"}
	}

	deliveredCount := len(delivered)
	requestedCount := task.Quantity
	if requestedCount == 0 {
		requestedCount = 1
	}

	for _, data := range delivered {
		account := Account{
			Name:         data.Name,
			Email:        data.Email,
			DepositValue: data.DepositValue,
			House:        task.House,
			Status:       schema.AccountActive,
			Tags:         []string{},
			TaskIdSource: taskId,
			PackId:       packId,
		}
		if err := svc.db.Create(&account).Error; err != nil {
			return errors.Wrap(err, "failed to create delivered account")
		}
		svc.notifyAsync("AccountCreated", account)
	}

	if packId != "" {
		if err := svc.bumpDelivered(packId, deliveredCount); err != nil {
			return err
		}
	}

	if deliveredCount < requestedCount {
		remaining := requestedCount - deliveredCount
		task.Quantity = remaining
		if err := svc.db.Save(&task).Error; err != nil {
			return errors.Wrap(err, "failed to update task on partial delivery")
		}
		svc.addLog(actor, task.PublicId,
			fmt.Sprintf("Entrega Parcial - %s", task.House),
			fmt.Sprintf("Entregues: %d. Restantes: %d.", deliveredCount, remaining))
	} else {
		now := time.Now().UTC()
		task.Status = schema.TaskFinished
		task.ResolvedAt = &now
		task.FinishedBy = actor.PublicId
		if err := svc.db.Save(&task).Error; err != nil {
			return errors.Wrap(err, "failed to finish task")
		}
		svc.addLog(actor, task.PublicId,
			fmt.Sprintf("Entrega Finalizada - %s", task.House),
			fmt.Sprintf("Tarefa concluída. %d contas entregues.", deliveredCount))
	}
	svc.notifyAsync("TaskStatusChanged", task)
	return nil
}

// listTasks returns tasks in display order: descending orderIndex, then
// newest first
func (svc *dashSvc) listTasks() ([]Task, error) {
	var tasks []Task
	err := svc.db.Order("order_index DESC").Order("created_at DESC").Find(&tasks).Error
	return tasks, errors.Wrap(err, "failed to list tasks")
}
