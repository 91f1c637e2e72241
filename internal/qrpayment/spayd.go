package qrpayment

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode/utf8"

	"fsreport/pkg/models"
)

// maxMessageLength is the longest MSG value a payment descriptor may carry.
const maxMessageLength = 60

var (
	// ErrInvalidAccount is returned for an account that is neither a Czech
	// domestic number nor an IBAN.
	ErrInvalidAccount = errors.New("invalid bank account")

	// ErrInvalidAmount is returned for a non-positive payment amount.
	ErrInvalidAmount = errors.New("payment amount must be positive")
)

var (
	domesticAccount = regexp.MustCompile(`^(?:(\d{1,6})-)?(\d{2,10})/(\d{4})$`)
	ibanAccount     = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{10,30}$`)
)

// Descriptor builds the SPAYD 1.0 text for the instruction.
func Descriptor(p models.PaymentInstruction) (string, error) {
	const op = "Descriptor"

	if p.Amount <= 0 {
		return "", fmt.Errorf("%s: %w: %d", op, ErrInvalidAmount, p.Amount)
	}

	iban, err := ToIBAN(p.Account)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	fields := []string{
		"SPD",
		"1.0",
		"ACC:" + iban,
		fmt.Sprintf("AM:%d.00", p.Amount),
		"CC:CZK",
	}
	if !p.DueDate.IsZero() {
		fields = append(fields, "DT:"+p.DueDate.Format("20060102"))
	}
	if msg := truncate(p.Message, maxMessageLength); msg != "" {
		fields = append(fields, "MSG:"+escapeValue(msg))
	}
	if p.VariableSymbol != "" {
		fields = append(fields, "X-VS:"+escapeValue(p.VariableSymbol))
	}

	return strings.Join(fields, "*"), nil
}

// ToIBAN converts a Czech domestic account (prefix-number/bank, prefix
// optional) to an IBAN. An IBAN input is returned normalized.
func ToIBAN(account string) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(account), " ", ""))

	if ibanAccount.MatchString(normalized) {
		return normalized, nil
	}

	m := domesticAccount.FindStringSubmatch(normalized)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccount, account)
	}

	prefix, number, bank := m[1], m[2], m[3]
	bban := bank + zeroPad(prefix, 6) + zeroPad(number, 10)

	return "CZ" + checkDigits(bban, "CZ") + bban, nil
}

// checkDigits computes the ISO 13616 check digits for a BBAN.
func checkDigits(bban, country string) string {
	var digits strings.Builder
	digits.WriteString(bban)
	for _, r := range country {
		fmt.Fprintf(&digits, "%d", r-'A'+10)
	}
	digits.WriteString("00")

	n, _ := new(big.Int).SetString(digits.String(), 10)
	mod := new(big.Int).Mod(n, big.NewInt(97)).Int64()
	return fmt.Sprintf("%02d", 98-mod)
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func escapeValue(s string) string {
	return strings.ReplaceAll(s, "*", "%2A")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
