package repository

import (
	"fmt"

	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/joseph-ayodele/paper-summarizer/internal/common"
)

// writeError classifies a failed insert. Duplicate keys keep common.ErrDuplicateKey in the chain.
func writeError(what, key string, err error) error {
	if sqlgraph.IsUniqueConstraintError(err) {
		return common.Database(fmt.Sprintf("%s %s already exists", what, key), fmt.Errorf("%w: %v", common.ErrDuplicateKey, err))
	}
	return common.Database(fmt.Sprintf("insert %s %s", what, key), err)
}

func notFound(what, key string) error {
	return common.Database(fmt.Sprintf("%s %s", what, key), common.ErrNotFound)
}
