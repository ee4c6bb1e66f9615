package main

import (
	"errors"
	"time"

	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthVerification struct {
	PublicId string `json:"sub"`
}

// User is synced, source is "auth"
type User struct {
	gorm.Model      `json:"-"`
	PublicId        string          `gorm:"unique" json:"uid"`
	Login           string          `json:"login"`
	Name            string          `json:"name"`
	RoleID          schema.UserRole `json:"roleId"`
	DefaultPixKeyId string          `json:"defaultPixKeyId,omitempty"`
}

// DisplayName is what goes into activity log entries
func (u *User) DisplayName() string {
	if u == nil {
		return "Sistema"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// Task is a unit of requested work ("pendência") tied to a house and,
// usually, an account. AccountName is a point-in-time snapshot of the
// linked account's name, not a foreign key; renaming an account rewrites
// matching open tasks (see syncTasksWithAccount).
type Task struct {
	gorm.Model     `json:"-"`
	PublicId       string            `gorm:"unique" json:"tid"`
	Type           string            `json:"type"`
	House          string            `json:"house"`
	AccountName    string            `json:"accountName,omitempty"`
	Quantity       int               `json:"quantity,omitempty"`
	Description    string            `json:"description,omitempty"`
	PixKeyInfo     string            `json:"pixKeyInfo,omitempty"`
	Status         schema.TaskStatus `json:"status"`
	DeletionReason string            `json:"deletionReason,omitempty"`
	OrderIndex     int64             `json:"orderIndex"`
	FinishedBy     string            `json:"finishedBy,omitempty"`
	ResolvedAt     *time.Time        `json:"resolvedAt,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.PublicId == "" {
		t.PublicId = uuid.NewString()
	}
	return nil
}

func (t *Task) validate() error {
	if t.Type == "" {
		return &ValidationError{"task must contain type"}
	}
	if t.House == "" {
		return &ValidationError{"a casa de aposta é obrigatória"}
	}
	if t.Type != schema.TypeNewAccount && t.Type != schema.TypeOther && t.AccountName == "" {
		return &ValidationError{"selecione uma conta para esta pendência"}
	}
	if t.Type == schema.TypeOther && t.Description == "" {
		return &ValidationError{"descreva a pendência"}
	}
	return nil
}

// Account is a credential set usable on a given house. A non-empty PackId
// ties the account into that pack's delivered-count accounting.
type Account struct {
	gorm.Model     `json:"-"`
	PublicId       string               `gorm:"unique" json:"aid"`
	Name           string               `json:"name"`
	Username       string               `json:"username,omitempty"`
	Email          string               `json:"email"`
	Password       string               `json:"password,omitempty"`
	Card           string               `json:"card,omitempty"`
	House          string               `json:"house"`
	DepositValue   float64              `json:"depositValue"`
	Status         schema.AccountStatus `json:"status"`
	LimitedAt      *time.Time           `json:"limitedAt,omitempty"`
	ReplacementAt  *time.Time           `json:"replacementAt,omitempty"`
	DeletionReason string               `json:"deletionReason,omitempty"`
	Owner          string               `json:"owner,omitempty"`
	Tags           []string             `gorm:"serializer:json" json:"tags"`
	TaskIdSource   string               `json:"taskIdSource,omitempty"`
	PackId         string               `json:"packId,omitempty"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.PublicId == "" {
		a.PublicId = uuid.NewString()
	}
	return nil
}

func (a *Account) validate() error {
	if a.Name == "" {
		return &ValidationError{"account must contain name"}
	}
	if a.House == "" {
		return &ValidationError{"account must contain house"}
	}
	if a.DepositValue < 0 {
		return &ValidationError{"deposit value must not be negative"}
	}
	if !a.Status.Valid() {
		return &ValidationError{"unknown account status"}
	}
	return nil
}

// Pack is a purchased lot of N accounts at a house.
// Status is derived from delivered/quantity and persisted; every mutation
// recomputes it through schema.DerivePackStatus.
type Pack struct {
	gorm.Model `json:"-"`
	PublicId   string            `gorm:"unique" json:"pid"`
	House      string            `json:"house"`
	Quantity   int               `json:"quantity"`
	Delivered  int               `json:"delivered"`
	Price      float64           `json:"price"`
	Status     schema.PackStatus `json:"status"`
}

func (p *Pack) BeforeCreate(tx *gorm.DB) error {
	if p.PublicId == "" {
		p.PublicId = uuid.NewString()
	}
	return nil
}

// PixKey is reusable payout-destination reference data. Once attached to a
// task it is snapshotted as free text (PixKeyInfo), so later edits here do
// not rewrite history.
type PixKey struct {
	gorm.Model `json:"-"`
	PublicId   string `gorm:"unique" json:"kid"`
	Name       string `json:"name"`
	Bank       string `json:"bank"`
	KeyType    string `json:"keyType"`
	Key        string `json:"key"`
}

func (k *PixKey) BeforeCreate(tx *gorm.DB) error {
	if k.PublicId == "" {
		k.PublicId = uuid.NewString()
	}
	return nil
}

func (k *PixKey) validate() error {
	if k.Name == "" || k.Bank == "" || k.Key == "" {
		return &ValidationError{"pix key must contain name, bank and key"}
	}
	if !schema.IsPixKeyType(k.KeyType) {
		return &ValidationError{"unknown pix key type"}
	}
	return nil
}

// LogEntry is append-only; TaskRef holds the task public id or "SYSTEM",
// TaskDescription and User are display snapshots captured at write time.
type LogEntry struct {
	gorm.Model      `json:"-"`
	PublicId        string    `gorm:"unique" json:"lid"`
	TaskRef         string    `json:"taskId"`
	TaskDescription string    `json:"taskDescription"`
	Action          string    `json:"action"`
	User            string    `json:"user"`
	Timestamp       time.Time `json:"timestamp"`
}

func (l *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if l.PublicId == "" {
		l.PublicId = uuid.NewString()
	}
	return nil
}

// House and TaskTypeConfig are ordered reference lists; Order is an explicit
// integer rewritten on reorder, not derived from array position.
type House struct {
	gorm.Model `json:"-"`
	PublicId   string `gorm:"unique" json:"hid"`
	Name       string `json:"name"`
	Order      int    `json:"order"`
}

func (h *House) BeforeCreate(tx *gorm.DB) error {
	if h.PublicId == "" {
		h.PublicId = uuid.NewString()
	}
	return nil
}

type TaskTypeConfig struct {
	gorm.Model  `json:"-"`
	PublicId    string `gorm:"unique" json:"cid"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Order       int    `json:"order"`
	AutoRequest bool   `json:"autoRequest"`
}

func (t *TaskTypeConfig) BeforeCreate(tx *gorm.DB) error {
	if t.PublicId == "" {
		t.PublicId = uuid.NewString()
	}
	return nil
}

// ValidationError is raised before any write and maps to a 400 response
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a pre-write validation failure
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
