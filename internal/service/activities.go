package service

import (
	"context"
	"errors"

	dom "Tracker/internal/domain"
	"Tracker/internal/listing"

	"github.com/jackc/pgx/v5"
)

// AddActivity inserts an activity owned by the current account.
func (t *Tracker) AddActivity(ctx context.Context, in dom.ActivityInput) (bool, error) {
	n, err := t.g.deps.Activities.Create(ctx, t.username, in)
	if err != nil {
		return false, storeErr("add activity", err)
	}
	t.invalidate(ctx, t.username)
	return n == 1, nil
}

// GetActivity returns an owned activity or ErrNotFound.
func (t *Tracker) GetActivity(ctx context.Context, id int64) (dom.Activity, error) {
	a, err := t.g.deps.Activities.GetByID(ctx, t.username, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Activity{}, ErrNotFound
		}
		return dom.Activity{}, storeErr("get activity", err)
	}
	return a, nil
}

func (t *Tracker) CheckIsValidActivity(ctx context.Context, id int64) (bool, error) {
	ok, err := t.g.deps.Activities.Exists(ctx, t.username, id)
	if err != nil {
		return false, storeErr("check activity", err)
	}
	return ok, nil
}

// EditActivity replaces the four editable fields. It reports false when the
// activity is missing or owned by someone else.
func (t *Tracker) EditActivity(ctx context.Context, in dom.ActivityInput, id int64) (bool, error) {
	n, err := t.g.deps.Activities.Update(ctx, t.username, id, in)
	if err != nil {
		return false, storeErr("edit activity", err)
	}
	if n > 0 {
		t.invalidate(ctx, t.username)
	}
	return n > 0, nil
}

// IsSameActivity reports whether in equals what is stored for id.
func (t *Tracker) IsSameActivity(ctx context.Context, in dom.ActivityInput, id int64) (bool, error) {
	ok, err := t.g.deps.Activities.Matches(ctx, t.username, id, in)
	if err != nil {
		return false, storeErr("compare activity", err)
	}
	return ok, nil
}

func (t *Tracker) DeleteActivity(ctx context.Context, id int64) (bool, error) {
	n, err := t.g.deps.Activities.Delete(ctx, t.username, id)
	if err != nil {
		return false, storeErr("delete activity", err)
	}
	if n > 0 {
		t.invalidate(ctx, t.username)
	}
	return n > 0, nil
}

// LoadSortedActivities returns every activity of the account in sort order.
// Concurrent loads of the same list share one query, which runs detached from
// the first caller's cancellation. A load that started before a write may
// cache the older list; it lives until the cache TTL expires.
func (t *Tracker) LoadSortedActivities(ctx context.Context, sort listing.State) ([]dom.Activity, error) {
	sort = sort.Normalize()
	c := t.g.deps.Cache
	if c == nil {
		return t.loadSorted(ctx, sort)
	}
	key := t.username + ":" + string(sort.Column) + ":" + sort.Direction()
	v, err, _ := t.g.sf.Do(key, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		if list, err := c.GetList(ctx, t.username, sort); err == nil && list != nil {
			return list, nil
		}
		list, err := t.loadSorted(ctx, sort)
		if err != nil {
			return nil, err
		}
		_ = c.SetList(ctx, t.username, sort, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Activity), nil
}

func (t *Tracker) loadSorted(ctx context.Context, sort listing.State) ([]dom.Activity, error) {
	list, err := t.g.deps.Activities.ListSorted(ctx, t.username, sort)
	if err != nil {
		return nil, storeErr("load activities", err)
	}
	return list, nil
}

func (t *Tracker) GetActivityCount(ctx context.Context) (int, error) {
	n, err := t.g.deps.Activities.Count(ctx, t.username)
	if err != nil {
		return 0, storeErr("count activities", err)
	}
	return n, nil
}
