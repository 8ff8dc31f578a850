package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func buildSQL(t *testing.T, f Filter) string {
	t.Helper()
	stmt := f.Apply(dryRunDB(t).Table("sales")).Find(&[]Sale{}).Statement
	return stmt.SQL.String()
}

func TestFilter_DefaultIsPaidOnly(t *testing.T) {
	sql := buildSQL(t, Filter{})

	assert.Contains(t, sql, "status ILIKE")
	assert.NotContains(t, sql, "platform_code")
	assert.NotContains(t, sql, "sale_date")
}

func TestFilter_CancelledStatus(t *testing.T) {
	stmt := Filter{Status: "cancelados"}.
		Apply(dryRunDB(t).Table("sales")).
		Find(&[]Sale{}).Statement

	assert.Contains(t, stmt.SQL.String(), "status ILIKE")
	assert.Contains(t, stmt.Vars, "%cancel%")
}

func TestFilter_AllStatusesSkipsStatusClause(t *testing.T) {
	sql := buildSQL(t, Filter{Status: "todos"})

	assert.NotContains(t, sql, "status")
}

func TestFilter_Channel(t *testing.T) {
	stmt := Filter{Status: "todos", Channel: "shopee"}.
		Apply(dryRunDB(t).Table("sales")).
		Find(&[]Sale{}).Statement

	assert.Contains(t, stmt.SQL.String(), "platform_code")
	assert.Contains(t, stmt.Vars, "SHOPEE")
}

func TestFilter_ModalityFull(t *testing.T) {
	stmt := Filter{Status: "todos", Modality: "full"}.
		Apply(dryRunDB(t).Table("sales")).
		Find(&[]Sale{}).Statement

	assert.Contains(t, stmt.SQL.String(), "logistic_type ILIKE")
	assert.Contains(t, stmt.Vars, "%fulfill%")
}

func TestFilter_ModalityMeExcludesFullAndFlex(t *testing.T) {
	stmt := Filter{Status: "todos", Modality: "me"}.
		Apply(dryRunDB(t).Table("sales")).
		Find(&[]Sale{}).Statement

	assert.Contains(t, stmt.SQL.String(), "NOT ILIKE")
	assert.Contains(t, stmt.Vars, "%fulfill%")
	assert.Contains(t, stmt.Vars, "%self_service%")
}

func TestFilter_Period(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	sql := buildSQL(t, Filter{Status: "todos", From: &from, To: &to})

	assert.Contains(t, sql, "sale_date >=")
	assert.Contains(t, sql, "sale_date <")
}

func TestFilter_Accounts(t *testing.T) {
	id := uuid.New()
	sql := buildSQL(t, Filter{Status: "todos", AccountIDs: []uuid.UUID{id}})

	assert.Contains(t, sql, "account_id IN")
}
