package repository

import (
	"github.com/doug-martin/goqu/v9"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type queryBuilderImpl struct {
	conditions map[string]interface{}
	limit      uint
	offset     uint
}

func NewQueryBuilder() QueryBuilder {
	return &queryBuilderImpl{
		conditions: make(map[string]interface{}),
		limit:      DefaultLimit,
	}
}

// AddCondition ignores empty string values so optional query params can be
// passed through unchecked.
func (q *queryBuilderImpl) AddCondition(key string, value interface{}) {
	if s, ok := value.(string); ok && s == "" {
		return
	}
	q.conditions[key] = value
}

func (q *queryBuilderImpl) BuildConditions(aliases map[string]string) goqu.Ex {
	conditions := goqu.Ex{}
	for key, value := range q.conditions {
		if alias, ok := aliases[key]; ok {
			conditions[alias] = value
		} else {
			conditions[key] = value
		}
	}
	return conditions
}

// SetPage clamps limit to [1, MaxLimit]; zero selects DefaultLimit.
func (q *queryBuilderImpl) SetPage(limit, offset uint) {
	switch {
	case limit == 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	q.limit = limit
	q.offset = offset
}

func (q *queryBuilderImpl) Page() (uint, uint) {
	return q.limit, q.offset
}
