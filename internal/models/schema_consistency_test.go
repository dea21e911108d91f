package models_test

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhgaber/dukan_pos_backend/internal/models"
)

// The repositories insert model enum values verbatim, so every value the code
// writes must be accepted by the corresponding CHECK constraint in the schema.
// A mismatch aborts the whole unit of work at commit time.
func TestSchemaChecksAcceptModelEnums(t *testing.T) {
	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init_schema.up.sql"))
	require.NoError(t, err, "reading init migration")

	cases := []struct {
		table  string
		column string
		values []string
	}{
		{
			table:  "ledger_accounts",
			column: "kind",
			values: []string{string(models.CashBox), string(models.Customer), string(models.Supplier)},
		},
		{
			table:  "movement_records",
			column: "movement_type",
			values: []string{string(models.Income), string(models.Expense), string(models.Transfer)},
		},
		{
			table:  "stock_movements",
			column: "movement_type",
			values: []string{string(models.StockIn), string(models.StockOut), string(models.StockAdjustment)},
		},
		{
			table:  "invoices",
			column: "kind",
			values: []string{string(models.SalesInvoice), string(models.PurchaseInvoice)},
		},
		{
			table:  "invoices",
			column: "status",
			values: []string{string(models.Draft), string(models.Posted), string(models.Voided)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.table+"."+tc.column, func(t *testing.T) {
			allowed := checkConstraintValues(t, string(schema), tc.table, tc.column)
			for _, v := range tc.values {
				require.Containsf(t, allowed, v,
					"schema CHECK does not accept %s %q written by the code (allowed: %v)", tc.column, v, allowed)
			}
		})
	}
}

// checkConstraintValues extracts the quoted value list of the IN-style CHECK
// on the given column inside the given CREATE TABLE block.
func checkConstraintValues(t *testing.T, schema, table, column string) []string {
	t.Helper()

	start := strings.Index(schema, "CREATE TABLE "+table+" (")
	require.GreaterOrEqualf(t, start, 0, "table %s not found in migration", table)
	block := schema[start:]
	end := strings.Index(block, "\n);")
	require.GreaterOrEqualf(t, end, 0, "end of table %s not found", table)
	block = block[:end]

	re := regexp.MustCompile(fmt.Sprintf(`CHECK \(%s IN \(([^)]+)\)\)`, column))
	m := re.FindStringSubmatch(block)
	require.NotNilf(t, m, "no IN-style CHECK on %s.%s", table, column)

	var values []string
	for _, raw := range strings.Split(m[1], ",") {
		values = append(values, strings.Trim(strings.TrimSpace(raw), "'"))
	}
	return values
}
