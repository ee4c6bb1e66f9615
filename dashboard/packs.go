package main

import (
	"fmt"

	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/pkg/errors"
)

// createPack registers a purchased lot of accounts at a house
func (svc *dashSvc) createPack(actor *User, house string, quantity int, price float64) (*Pack, error) {
	if house == "" {
		return nil, &ValidationError{"pack must contain house"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{"pack quantity must be positive"}
	}
	if price < 0 {
		return nil, &ValidationError{"pack price must not be negative"}
	}

	pack := Pack{
		House:     house,
		Quantity:  quantity,
		Delivered: 0,
		Price:     price,
		Status:    schema.PackActive,
	}
	if err := svc.db.Create(&pack).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create pack")
	}

	svc.addLog(actor, pack.PublicId,
		fmt.Sprintf("Pack %s", house),
		fmt.Sprintf("Novo pack criado: %d contas", quantity))
	svc.notifyAsync("PackCreated", pack)
	return &pack, nil
}

// bumpDelivered is the single choke point for raising a pack's delivered
// count; task deliveries and manual account creation both go through it.
// Status is recomputed from the new counts, never set directly.
func (svc *dashSvc) bumpDelivered(packId string, amount int) error {
	var pack Pack
	result := svc.db.First(&pack, "public_id = ?", packId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Pack %s not found, ignoring delivered bump", packId)
		return nil
	}

	pack.Delivered += amount
	pack.Status = schema.DerivePackStatus(pack.Delivered, pack.Quantity)
	if err := svc.db.Save(&pack).Error; err != nil {
		return errors.Wrap(err, "failed to update pack progress")
	}
	svc.notifyAsync("PackUpdated", pack)
	return nil
}

// revertDelivered gives one slot back when a drawn account goes to
// replacement. The count floors at zero and the pack always reopens,
// even when it was COMPLETED.
func (svc *dashSvc) revertDelivered(packId string) error {
	var pack Pack
	result := svc.db.First(&pack, "public_id = ?", packId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Pack %s not found, ignoring delivered revert", packId)
		return nil
	}

	if pack.Delivered > 0 {
		pack.Delivered--
	}
	pack.Status = schema.PackActive
	if err := svc.db.Save(&pack).Error; err != nil {
		return errors.Wrap(err, "failed to revert pack progress")
	}
	svc.notifyAsync("PackUpdated", pack)
	return nil
}

// PackUpdate carries admin-editable pack fields; nil means "leave unchanged"
type PackUpdate struct {
	Quantity  *int               `json:"quantity"`
	Delivered *int               `json:"delivered"`
	Price     *float64           `json:"price"`
	Status    *schema.PackStatus `json:"status"`
}

// editPack applies an admin correction. The status recompute from the final
// delivered/quantity pair is authoritative: a caller cannot mark a pack
// COMPLETED while delivered < quantity.
func (svc *dashSvc) editPack(actor *User, packId string, updates PackUpdate) error {
	var pack Pack
	result := svc.db.First(&pack, "public_id = ?", packId)
	if result.RowsAffected != 1 {
		svc.logger.Debugf("Pack %s not found, ignoring edit", packId)
		return nil
	}

	if updates.Quantity != nil {
		if *updates.Quantity <= 0 {
			return &ValidationError{"pack quantity must be positive"}
		}
		pack.Quantity = *updates.Quantity
	}
	if updates.Delivered != nil {
		if *updates.Delivered < 0 {
			return &ValidationError{"delivered count must not be negative"}
		}
		pack.Delivered = *updates.Delivered
	}
	if updates.Price != nil {
		pack.Price = *updates.Price
	}
	// recompute from the final pair, overriding whatever status the caller sent
	pack.Status = schema.DerivePackStatus(pack.Delivered, pack.Quantity)

	if err := svc.db.Save(&pack).Error; err != nil {
		return errors.Wrap(err, "failed to edit pack")
	}
	svc.addLog(actor, pack.PublicId, "Gestão de Packs", "Pack atualizado por admin")
	svc.notifyAsync("PackUpdated", pack)
	return nil
}

func (svc *dashSvc) listPacks() ([]Pack, error) {
	var packs []Pack
	err := svc.db.Order("created_at DESC").Find(&packs).Error
	return packs, errors.Wrap(err, "failed to list packs")
}
