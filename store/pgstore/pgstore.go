// Package pgstore is the Postgres-backed metadata store. One table
// holds every element as (aggregation, kind, id, jsonb attrs).
package pgstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/store"
)

const schema = `
create table if not exists hs_elements (
	id serial primary key,
	aggregation text not null,
	kind text not null,
	attrs jsonb not null
);
create index if not exists hs_elements_agg_kind on hs_elements (aggregation, kind);
`

// DB wraps one database connection pool shared by all aggregations.
type DB struct {
	db *sql.DB
}

func Open(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating element table: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// ForAggregation scopes a Store to one aggregation's container.
func (d *DB) ForAggregation(aggregation string) *PgStore {
	return &PgStore{db: d.db, aggregation: aggregation}
}

type PgStore struct {
	db          *sql.DB
	aggregation string
}

func (s *PgStore) CreateElement(kind meta.Kind, attrs meta.Attrs) (int, error) {
	data, err := json.Marshal(attrs)
	if err != nil {
		return 0, err
	}
	var id int
	err = s.db.QueryRow(
		`insert into hs_elements (aggregation, kind, attrs) values ($1, $2, $3) returning id`,
		s.aggregation, string(kind), data,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating %s element: %w", kind, err)
	}
	return id, nil
}

func (s *PgStore) UpdateElement(kind meta.Kind, id int, attrs meta.Attrs) error {
	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`update hs_elements set attrs = $1 where aggregation = $2 and kind = $3 and id = $4`,
		data, s.aggregation, string(kind), id,
	)
	if err != nil {
		return fmt.Errorf("updating %s element %d: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no %s element with id %d", kind, id)
	}
	return nil
}

func (s *PgStore) DeleteElements(kind meta.Kind, match func(store.Element) bool) error {
	if match == nil {
		_, err := s.db.Exec(
			`delete from hs_elements where aggregation = $1 and kind = $2`,
			s.aggregation, string(kind),
		)
		return err
	}

	elements, err := s.ListElements(kind)
	if err != nil {
		return err
	}
	for _, el := range elements {
		if !match(el) {
			continue
		}
		if _, err := s.db.Exec(`delete from hs_elements where id = $1`, el.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *PgStore) GetSingleton(kind meta.Kind) (*store.Element, error) {
	elements, err := s.ListElements(kind)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, nil
	}
	return &elements[0], nil
}

func (s *PgStore) ListElements(kind meta.Kind) ([]store.Element, error) {
	rows, err := s.db.Query(
		`select id, attrs from hs_elements where aggregation = $1 and kind = $2 order by id`,
		s.aggregation, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s elements: %w", kind, err)
	}
	defer rows.Close()

	var out []store.Element
	for rows.Next() {
		var el store.Element
		var data []byte
		if err := rows.Scan(&el.ID, &data); err != nil {
			return nil, err
		}
		el.Kind = kind
		if err := json.Unmarshal(data, &el.Attrs); err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, rows.Err()
}
