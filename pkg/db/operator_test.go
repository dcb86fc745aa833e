package db_test

import (
	"testing"

	"github.com/gizisehat/gizi/internal/iodb"
	"github.com/gizisehat/gizi/pkg/db"
)

// TestPgxOperatorImplementsInterface ensures compile-time contract
// compliance.
func TestPgxOperatorImplementsInterface(t *testing.T) {
	var _ db.Operator = iodb.NewPgxOperator()
}
