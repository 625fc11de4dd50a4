package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "player_id").
		From("lineup_intervals").
		Where(Eq("match_id", "m1"), IsNull("deleted_at")).
		OrderBy("start_minute", "player_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, player_id FROM lineup_intervals WHERE match_id = $1 AND deleted_at IS NULL ORDER BY start_minute, player_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "m1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RangePredicates(t *testing.T) {
	query, args, err := Select("id").
		From("lineup_intervals").
		Where(
			Eq("match_id", "m1"),
			Lte("start_minute", 45.0),
			Expr("(end_minute IS NULL OR end_minute > ?)", 45.0),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM lineup_intervals WHERE match_id = $1 AND start_minute <= $2 AND (end_minute IS NULL OR end_minute > $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("match_periods").
		Columns("id", "match_id").
		Values("p1", "m1").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO match_periods (id, match_id) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "m1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("lineup_intervals").
		Set("position", "CM").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "i1"), IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE lineup_intervals SET position = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "CM" || args[1] != "i1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
