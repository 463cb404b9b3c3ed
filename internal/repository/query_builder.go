package repository

import "github.com/doug-martin/goqu/v9"

// QueryBuilder collects optional filters and paging for list queries.
type QueryBuilder interface {
	AddCondition(key string, value interface{})
	BuildConditions(aliases map[string]string) goqu.Ex
	SetPage(limit, offset uint)
	Page() (limit, offset uint)
}
