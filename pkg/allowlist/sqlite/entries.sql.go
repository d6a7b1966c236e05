package sqlite

import (
	"context"
)

const addEntry = `-- name: AddEntry :exec
insert into entries (list, name) values (?, ?)
on conflict (list, name) do nothing
`

type AddEntryParams struct {
	List string
	Name string
}

func (q *Queries) AddEntry(ctx context.Context, arg AddEntryParams) error {
	_, err := q.db.ExecContext(ctx, addEntry, arg.List, arg.Name)
	return err
}

const removeEntry = `-- name: RemoveEntry :execrows
delete from entries where list = ? and name = ?
`

type RemoveEntryParams struct {
	List string
	Name string
}

func (q *Queries) RemoveEntry(ctx context.Context, arg RemoveEntryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, removeEntry, arg.List, arg.Name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getEntries = `-- name: GetEntries :many
select name from entries where list = ? order by name
`

func (q *Queries) GetEntries(ctx context.Context, list string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getEntries, list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
