package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_BasicSelect(t *testing.T) {
	stmt := From("promotions").
		Select("promotion_id", "name", "kind").
		Build()

	assert.Equal(t, "SELECT promotion_id, name, kind FROM promotions", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestBuilder_SelectAllColumns(t *testing.T) {
	stmt := From("promotions").Build()

	assert.Equal(t, "SELECT * FROM promotions", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestBuilder_MultipleWhereConditions(t *testing.T) {
	stmt := From("promotions").
		Select("promotion_id").
		Where(Eq("active", true)).
		Where(Lte("start_date", "2026-01-01")).
		Where(Gt("end_date", "2026-01-01")).
		Build()

	assert.Equal(t, "SELECT promotion_id FROM promotions WHERE active = @p0 AND start_date <= @p1 AND end_date > @p2", stmt.SQL)
	assert.Equal(t, map[string]interface{}{
		"p0": true,
		"p1": "2026-01-01",
		"p2": "2026-01-01",
	}, stmt.Params)
}

func TestBuilder_NilConditionSkipped(t *testing.T) {
	stmt := From("products").Select("product_id").Where(nil).Build()

	assert.Equal(t, "SELECT product_id FROM products", stmt.SQL)
}

func TestBuilder_OrderByAndLimit(t *testing.T) {
	stmt := From("promotions").
		Select("promotion_id").
		OrderBy(Desc, "created_at", "promotion_id").
		Limit(10).
		Build()

	assert.Equal(t, "SELECT promotion_id FROM promotions ORDER BY created_at DESC, promotion_id DESC LIMIT @limit", stmt.SQL)
	assert.Equal(t, map[string]interface{}{"limit": int64(10)}, stmt.Params)
}

func TestBuilder_ScopeFilterWithKeyset(t *testing.T) {
	stmt := From("products").
		Select("product_id").
		Where(AnyOf(
			In("category", []string{"pens"}),
			In("brand", []string{"Pilot", "Lamy"}),
		)).
		Where(Gt("product_id", "p-100")).
		OrderBy(Asc, "product_id").
		Limit(200).
		Build()

	assert.Equal(t,
		"SELECT product_id FROM products WHERE (category IN UNNEST(@p0) OR brand IN UNNEST(@p1)) AND product_id > @p2 ORDER BY product_id ASC LIMIT @limit",
		stmt.SQL)
	assert.Equal(t, map[string]interface{}{
		"p0":    []string{"pens"},
		"p1":    []string{"Pilot", "Lamy"},
		"p2":    "p-100",
		"limit": int64(200),
	}, stmt.Params)
}

func TestBuilder_Count(t *testing.T) {
	builder := From("orders").
		Select("order_id", "status").
		Where(Eq("status", "pending")).
		OrderBy(Desc, "created_at").
		Limit(50)

	countStmt := builder.Count().Build()
	assert.Equal(t, "SELECT COUNT(*) FROM orders WHERE status = @p0", countStmt.SQL)
	assert.Equal(t, map[string]interface{}{"p0": "pending"}, countStmt.Params)

	// original builder is unchanged
	assert.Contains(t, builder.Build().SQL, "LIMIT @limit")
}

func TestBuilder_Immutability(t *testing.T) {
	base := From("products").Select("product_id")

	stmt1 := base.Where(Eq("brand", "Pilot")).Build()
	stmt2 := base.Where(Eq("category", "pens")).Build()

	assert.Contains(t, stmt1.SQL, "brand = @p0")
	assert.NotContains(t, stmt1.SQL, "category")
	assert.Contains(t, stmt2.SQL, "category = @p0")
	assert.NotContains(t, stmt2.SQL, "brand")
}

func TestCondition_AnyOf(t *testing.T) {
	t.Run("empty is false", func(t *testing.T) {
		sql, params := AnyOf().SQL(0)
		assert.Equal(t, "FALSE", sql)
		assert.Empty(t, params)
	})

	t.Run("single condition unwrapped", func(t *testing.T) {
		sql, params := AnyOf(In("sku", []string{"A-1"})).SQL(3)
		assert.Equal(t, "sku IN UNNEST(@p3)", sql)
		assert.Equal(t, map[string]interface{}{"p3": []string{"A-1"}}, params)
	})
}

func TestCondition_Nulls(t *testing.T) {
	sql, params := IsNull("promo_promotion_id").SQL(0)
	assert.Equal(t, "promo_promotion_id IS NULL", sql)
	assert.Empty(t, params)

	sql, params = IsNotNull("promo_promotion_id").SQL(4)
	assert.Equal(t, "promo_promotion_id IS NOT NULL", sql)
	assert.Empty(t, params)
}

func TestBuilder_String(t *testing.T) {
	str := From("promotions").Where(Eq("active", true)).String()
	require.NotEmpty(t, str)
	assert.Contains(t, str, "SQL:")
	assert.Contains(t, str, "Params:")
}

func TestCondition_NotIn(t *testing.T) {
	sql, params := NotIn("promo_promotion_id", nil).SQL(1)
	assert.Equal(t, "promo_promotion_id NOT IN UNNEST(@p1)", sql)
	assert.Equal(t, map[string]interface{}{"p1": []string{}}, params)
}
