package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropStatements(t *testing.T) {
	stmts := dropStatements(NewTableNames("test_"))

	assert.Equal(t, []string{
		"DROP TABLE IF EXISTS test_document_versions CASCADE",
		"DROP TABLE IF EXISTS test_documents CASCADE",
		"DROP TABLE IF EXISTS test_folders CASCADE",
		"DROP TABLE IF EXISTS test_profiles CASCADE",
		"DROP TABLE IF EXISTS test_goose_db_version CASCADE",
	}, stmts)
}
