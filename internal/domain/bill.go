package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Dashboard consumers read money as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ============================================================
// Bills (títulos) as served by the FinHawk API
// ============================================================

// TxType is the transaction side of a bill, derived from its category.
type TxType string

const (
	TxReceipt TxType = "RECEIPT" // receita
	TxPayment TxType = "PAYMENT" // despesa
)

// BillStatus is the settlement state of a bill.
type BillStatus string

const (
	StatusPending  BillStatus = "PENDING"
	StatusPaid     BillStatus = "PAID"
	StatusReceived BillStatus = "RECEIVED"
)

// UncategorizedLabel names the category bucket of bills without a category.
const UncategorizedLabel = "Sem Categoria"

var txTypeAliases = map[string]TxType{
	"RECEIPT":     TxReceipt,
	"RECEBIMENTO": TxReceipt,
	"RECEITA":     TxReceipt,
	"PAYMENT":     TxPayment,
	"PAGAMENTO":   TxPayment,
	"DESPESA":     TxPayment,
}

var statusAliases = map[string]BillStatus{
	"PENDING":  StatusPending,
	"PENDENTE": StatusPending,
	"PAID":     StatusPaid,
	"PAGO":     StatusPaid,
	"RECEIVED": StatusReceived,
	"RECEBIDO": StatusReceived,
}

// ParseTxType uppercases s and maps known aliases. Unknown values yield "".
func ParseTxType(s string) TxType {
	return txTypeAliases[strings.ToUpper(strings.TrimSpace(s))]
}

// ParseBillStatus uppercases s and maps known aliases. Unknown values are
// kept uppercased so they never match a settled state.
func ParseBillStatus(s string) BillStatus {
	up := strings.ToUpper(strings.TrimSpace(s))
	if st, ok := statusAliases[up]; ok {
		return st
	}
	return BillStatus(up)
}

// IsSettled reports whether the bill counts towards the realized balance.
func (s BillStatus) IsSettled() bool {
	return s == StatusPaid || s == StatusReceived
}

// Category groups bills and carries their transaction side.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type TxType `json:"type"`
}

// BillRecord is the canonical shape of a bill. It is produced once at the
// API boundary; everything downstream treats it as read-only.
type BillRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Emission    time.Time       `json:"emission"`
	Maturity    time.Time       `json:"maturity"`
	Amount      decimal.Decimal `json:"amount"`
	Status      BillStatus      `json:"status"`
	Category    *Category       `json:"category,omitempty"`
	Type        TxType          `json:"type,omitempty"` // legacy top-level type

	InstallmentCount   int    `json:"installmentCount,omitempty"`
	CurrentInstallment int    `json:"currentInstallment,omitempty"`
	Periodicity        string `json:"periodicity,omitempty"`
}

// Installment renders the installment position as "3/12", "3" when the
// count is unknown, or "" for single payments.
func (b BillRecord) Installment() string {
	switch {
	case b.CurrentInstallment <= 0:
		return ""
	case b.InstallmentCount > 0:
		return strconv.Itoa(b.CurrentInstallment) + "/" + strconv.Itoa(b.InstallmentCount)
	default:
		return strconv.Itoa(b.CurrentInstallment)
	}
}

// HasMaturity reports whether the maturity date was present and parseable.
func (b BillRecord) HasMaturity() bool {
	return !b.Maturity.IsZero()
}

// Account is the FinHawk account (carteira) a bill list belongs to.
type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
