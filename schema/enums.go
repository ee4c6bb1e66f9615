package schema

// UserRole copies values from Auth.Role
type UserRole int

const (
	RoleAdmin UserRole = iota + 1
	RoleUser
	RoleAgency
	RoleKFB
)

var roleNames = map[UserRole]string{
	RoleAdmin:  "ADMIN",
	RoleUser:   "USER",
	RoleAgency: "AGENCIA",
	RoleKFB:    "KFB",
}

func (r UserRole) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// TaskStatus is persisted as-is, labels are for log lines and UI
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDENTE"
	TaskRequested TaskStatus = "SOLICITADA"
	TaskFinished  TaskStatus = "FINALIZADA"
	TaskDeleted   TaskStatus = "EXCLUIDA"
)

var taskStatusLabels = map[TaskStatus]string{
	TaskPending:   "Pendente",
	TaskRequested: "Solicitada",
	TaskFinished:  "Finalizada",
	TaskDeleted:   "Excluída",
}

func (s TaskStatus) Label() string {
	if label, ok := taskStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s TaskStatus) Valid() bool {
	_, ok := taskStatusLabels[s]
	return ok
}

type AccountStatus string

const (
	AccountActive      AccountStatus = "ACTIVE"
	AccountLimited     AccountStatus = "LIMITED"
	AccountReplacement AccountStatus = "REPLACEMENT"
	AccountDeleted     AccountStatus = "DELETED"
)

var accountStatusLabels = map[AccountStatus]string{
	AccountActive:      "Ativa",
	AccountLimited:     "Limitada",
	AccountReplacement: "Reposição",
	AccountDeleted:     "Excluída",
}

func (s AccountStatus) Label() string {
	if label, ok := accountStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s AccountStatus) Valid() bool {
	_, ok := accountStatusLabels[s]
	return ok
}

type PackStatus string

const (
	PackActive    PackStatus = "ACTIVE"
	PackCompleted PackStatus = "COMPLETED"
)

// DerivePackStatus is the single authority for pack completion:
// a pack is COMPLETED iff delivered >= quantity. Every mutator of
// delivered or quantity must go through it.
func DerivePackStatus(delivered, quantity int) PackStatus {
	if delivered >= quantity {
		return PackCompleted
	}
	return PackActive
}

// Built-in task types
const (
	TypeSMS          = "SMS"
	TypeWeeklyFacial = "FACIAL_SEMANAL"
	TypeRemove2FA    = "REMOVER_2FA"
	TypeDeposit      = "DEPOSITO"
	TypeWithdrawal   = "SAQUE"
	TypeBalanceSend  = "ENVIO_SALDO"
	TypeNewAccount   = "CONTA_NOVA"
	TypeOther        = "OUTRO"
)

// DefaultTaskType describes one built-in request kind.
// AutoRequest types skip PENDENTE and are created as SOLICITADA.
type DefaultTaskType struct {
	Value       string
	Label       string
	AutoRequest bool
}

var DefaultTaskTypes = []DefaultTaskType{
	{TypeSMS, "SMS", true},
	{TypeWeeklyFacial, "Facial Semanal", false},
	{TypeRemove2FA, "Remover 2FA", true},
	{TypeDeposit, "Depósito", true},
	{TypeWithdrawal, "Saque", false},
	{TypeBalanceSend, "Envio de Saldo", false},
	{TypeNewAccount, "Conta Nova", true},
	{TypeOther, "Outro", false},
}

var DefaultHouses = []string{
	"Bet365",
	"Betano",
	"Novibet",
	"KTO",
	"EstrelaBet",
	"Stake",
	"Outra",
}

// Valid pix key kinds
var PixKeyTypes = []string{"CPF", "CNPJ", "EMAIL", "TELEFONE", "ALEATORIA"}

func IsPixKeyType(t string) bool {
	for _, known := range PixKeyTypes {
		if known == t {
			return true
		}
	}
	return false
}

// SystemTaskRef marks log entries not linked to any task
const SystemTaskRef = "SYSTEM"

// ReasonNotInformed is logged when a deletion comes without a reason
const ReasonNotInformed = "Não informado"
