package tool

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const gatewayTxnSuffixLen = 9

var gatewayTxnCharset = append(append([]rune{}, lo.UpperCaseLettersCharset...), lo.NumbersCharset...)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateGatewayTransactionID returns a correlation token of the form
// TXN<epoch-millis><random suffix>. Uniqueness is probabilistic.
func GenerateGatewayTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN%d%s", now.UnixMilli(), lo.RandomString(gatewayTxnSuffixLen, gatewayTxnCharset))
}

// GenerateReceiptNumber returns RCP-<yyyymmdd>-<6 digits>.
func GenerateReceiptNumber(now time.Time) string {
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102"), lo.RandomString(6, lo.NumbersCharset))
}
