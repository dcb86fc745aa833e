package iostore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gizisehat/gizi/pkg/schema"
)

// sqliteTime is fixed-width so that text order is time order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// dialect hides differences between SQLite and PostgreSQL.
type dialect struct {
	name string
	// numbered placeholders ($1, $2) instead of ?
	numbered bool
	init     func(ctx context.Context, db *sql.DB) error
	close    func() error
}

// sqlRepo is a Repository over database/sql. Queries are written with
// ? placeholders and rebound for the dialect.
type sqlRepo struct {
	db *sql.DB
	d  dialect
}

func (r *sqlRepo) Init(ctx context.Context) error {
	return r.d.init(ctx, r.db)
}

func (r *sqlRepo) Close() error {
	err := r.db.Close()
	if r.d.close != nil {
		err = errors.Join(err, r.d.close())
	}
	return err
}

func (r *sqlRepo) rebind(q string) string {
	if !r.d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *sqlRepo) timeArg(t time.Time) any {
	if r.d.numbered {
		return t.UTC()
	}
	return t.UTC().Format(sqliteTime)
}

func parseTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999 -0700 MST",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func (r *sqlRepo) insert(ctx context.Context, table string, model any, args ...any) error {
	cols := schema.Columns(model)
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
	if _, err := r.db.ExecContext(ctx, r.rebind(q), args...); err != nil {
		return WriteError(table, err)
	}
	return nil
}

func (r *sqlRepo) selectQuery(table string, model any, tail string) string {
	q := fmt.Sprintf("SELECT %s FROM %s %s",
		strings.Join(schema.Columns(model), ", "), table, tail)
	return r.rebind(q)
}

// query runs q and calls scan for every row.
func (r *sqlRepo) query(
	ctx context.Context,
	table, q string,
	scan func(*sql.Rows) error,
	args ...any,
) error {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return QueryError(table, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return QueryError(table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return QueryError(table, err)
	}
	return nil
}

func (r *sqlRepo) SaveChild(ctx context.Context, c child.Child) error {
	row := childRow(c)
	return r.insert(ctx, row.TableName(), row,
		row.ID, row.Version, row.Name, row.Sex,
		r.timeArg(row.BirthDate), r.timeArg(row.CreatedAt),
	)
}

func scanChild(rows *sql.Rows) (child.Child, error) {
	var row schema.Child
	var birth, created string
	err := rows.Scan(&row.ID, &row.Version, &row.Name, &row.Sex, &birth, &created)
	if err != nil {
		return child.Child{}, err
	}
	if row.BirthDate, err = parseTime(birth); err != nil {
		return child.Child{}, err
	}
	if row.CreatedAt, err = parseTime(created); err != nil {
		return child.Child{}, err
	}
	return childOf(row), nil
}

func (r *sqlRepo) Child(ctx context.Context, id string) (child.Child, error) {
	vs, err := r.ChildVersions(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	return vs[len(vs)-1], nil
}

func (r *sqlRepo) ChildVersions(ctx context.Context, id string) ([]child.Child, error) {
	var res []child.Child
	q := r.selectQuery("children", schema.Child{}, "WHERE id = ? ORDER BY version")
	err := r.query(ctx, "children", q, func(rows *sql.Rows) error {
		c, err := scanChild(rows)
		res = append(res, c)
		return err
	}, id)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, gizi.NotFoundError("child", id)
	}
	return res, nil
}

func (r *sqlRepo) Children(ctx context.Context) ([]child.Child, error) {
	var res []child.Child
	tail := `c WHERE c.version = (
	SELECT MAX(v.version) FROM children v WHERE v.id = c.id
) ORDER BY c.name, c.id`
	q := r.selectQuery("children", schema.Child{}, tail)
	err := r.query(ctx, "children", q, func(rows *sql.Rows) error {
		c, err := scanChild(rows)
		res = append(res, c)
		return err
	})
	return res, err
}

func (r *sqlRepo) AppendMeasurement(ctx context.Context, rec history.Record) error {
	row := measurementRow(rec)
	return r.insert(ctx, row.TableName(), row,
		row.ID, row.ChildID, row.Seq, r.timeArg(row.Timestamp),
		row.WeightKg, row.HeightCm, row.MUACCm, row.Note, row.Supersedes,
		row.AgeMonths, row.Verdict,
	)
}

func (r *sqlRepo) Measurements(ctx context.Context, childID string) ([]history.Record, error) {
	var res []history.Record
	q := r.selectQuery("measurements", schema.Measurement{},
		"WHERE child_id = ? ORDER BY taken_at, seq")
	err := r.query(ctx, "measurements", q, func(rows *sql.Rows) error {
		var row schema.Measurement
		var ts string
		err := rows.Scan(&row.ID, &row.ChildID, &row.Seq, &ts,
			&row.WeightKg, &row.HeightCm, &row.MUACCm, &row.Note,
			&row.Supersedes, &row.AgeMonths, &row.Verdict)
		if err != nil {
			return err
		}
		if row.Timestamp, err = parseTime(ts); err != nil {
			return err
		}
		res = append(res, recordOf(row))
		return nil
	}, childID)
	return res, err
}

func (r *sqlRepo) AppendIntake(ctx context.Context, e nutrient.IntakeEntry) error {
	row := intakeRow(e)
	return r.insert(ctx, row.TableName(), row,
		row.ID, row.ChildID, row.Date, row.FoodID,
		row.Energy, row.Protein, row.Iron, row.Zinc,
		row.Description, row.Portion, r.timeArg(row.LoggedAt), row.Source,
	)
}

func (r *sqlRepo) Intake(ctx context.Context, childID string) ([]nutrient.IntakeEntry, error) {
	var res []nutrient.IntakeEntry
	q := r.selectQuery("intake_entries", schema.IntakeEntry{},
		"WHERE child_id = ? ORDER BY logged_at, id")
	err := r.query(ctx, "intake_entries", q, func(rows *sql.Rows) error {
		var row schema.IntakeEntry
		var logged string
		err := rows.Scan(&row.ID, &row.ChildID, &row.Date, &row.FoodID,
			&row.Energy, &row.Protein, &row.Iron, &row.Zinc,
			&row.Description, &row.Portion, &logged, &row.Source)
		if err != nil {
			return err
		}
		if row.LoggedAt, err = parseTime(logged); err != nil {
			return err
		}
		res = append(res, intakeOf(row))
		return nil
	}, childID)
	return res, err
}

func (r *sqlRepo) SaveSession(ctx context.Context, s gizi.Session) error {
	row := sessionRow(s)
	return r.insert(ctx, row.TableName(), row,
		row.ID, row.ChildID, r.timeArg(row.CreatedAt))
}

func (r *sqlRepo) Session(ctx context.Context, id string) (gizi.Session, error) {
	var res []gizi.Session
	q := r.selectQuery("sessions", schema.Session{}, "WHERE id = ?")
	err := r.query(ctx, "sessions", q, func(rows *sql.Rows) error {
		var row schema.Session
		var created string
		err := rows.Scan(&row.ID, &row.ChildID, &created)
		if err != nil {
			return err
		}
		if row.CreatedAt, err = parseTime(created); err != nil {
			return err
		}
		res = append(res, sessionOf(row))
		return nil
	}, id)
	if err != nil {
		return gizi.Session{}, err
	}
	if len(res) == 0 {
		return gizi.Session{}, gizi.NotFoundError("session", id)
	}
	return res[0], nil
}

func (r *sqlRepo) AppendMessage(ctx context.Context, m assistant.Message) error {
	row := messageRow(m)
	return r.insert(ctx, row.TableName(), row,
		row.ID, row.SessionID, row.Seq, row.Role, row.Text, row.IntentID,
		r.timeArg(row.Timestamp),
	)
}

func (r *sqlRepo) Messages(ctx context.Context, sessionID string) ([]assistant.Message, error) {
	var res []assistant.Message
	q := r.selectQuery("messages", schema.Message{},
		"WHERE session_id = ? ORDER BY sent_at, seq")
	err := r.query(ctx, "messages", q, func(rows *sql.Rows) error {
		var row schema.Message
		var ts string
		err := rows.Scan(&row.ID, &row.SessionID, &row.Seq, &row.Role,
			&row.Text, &row.IntentID, &ts)
		if err != nil {
			return err
		}
		if row.Timestamp, err = parseTime(ts); err != nil {
			return err
		}
		res = append(res, messageOf(row))
		return nil
	}, sessionID)
	return res, err
}
