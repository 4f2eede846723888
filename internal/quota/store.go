// Package quota tracks which identities have used their one résumé analysis.
//
// Records are permanent: no backend evicts or expires them, and Commit is the
// only way to create one.
package quota

import (
	"context"
	"errors"

	"github.com/BerylCAtieno/resume-analyzer-api/internal/models"
)

// ErrAlreadyRecorded is returned by Commit when the identity already has a
// record. Exactly one of any number of concurrent commits for the same
// identity succeeds.
var ErrAlreadyRecorded = errors.New("quota: identity already recorded")

type Store interface {
	Has(ctx context.Context, identity string) (bool, error)
	// Peek returns nil, nil when the identity has no record.
	Peek(ctx context.Context, identity string) (*models.QuotaRecord, error)
	Commit(ctx context.Context, record models.QuotaRecord) error
	Ping(ctx context.Context) error
}
