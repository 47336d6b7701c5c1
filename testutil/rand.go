package testutil

import (
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"

	"github.com/stakevault/stake-settlement/internal/ledger"
)

// ContainerName returns a docker container name for service. Docker keeps
// names unique, so a random suffix lets a stale container from an earlier
// run stay around.
func ContainerName(service string) string {
	return service + "-integration-tests-" + strings.ToLower(gofakeit.LetterN(6))
}

// AccountID returns a random account id.
func AccountID() ledger.AccountID {
	return ledger.AccountID(gofakeit.UUID())
}

// Amount returns a random amount in [lo, hi].
func Amount(lo, hi int) sdkmath.Uint {
	return sdkmath.NewUint(uint64(gofakeit.IntRange(lo, hi)))
}
